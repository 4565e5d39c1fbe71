package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// StandardScaler is the serialized form of a fitted standard scaler:
// x' = (x - mean) / scale, element-wise.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform applies the fitted scaling. The input length must match the
// fitted dimensionality.
func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// LinearClassifier is the serialized form of a fitted logistic
// regression. One coefficient row means a binary model (sigmoid over a
// single score); multiple rows mean softmax over per-class scores.
type LinearClassifier struct {
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
	ClassLabels  []int       `json:"classes"`
}

// Classes returns the ordered class labels the distribution indexes.
func (c *LinearClassifier) Classes() []int {
	return c.ClassLabels
}

// PredictProbabilities returns the class probability distribution for a
// scaled feature vector.
func (c *LinearClassifier) PredictProbabilities(scaled []float64) ([]float64, error) {
	if len(c.Coefficients) == 0 {
		return nil, fmt.Errorf("classifier has no coefficients")
	}
	for i, row := range c.Coefficients {
		if len(row) != len(scaled) {
			return nil, fmt.Errorf("classifier row %d expects %d features, got %d", i, len(row), len(scaled))
		}
	}

	if len(c.Coefficients) == 1 {
		p := sigmoid(dot(c.Coefficients[0], scaled) + c.Intercepts[0])
		return []float64{1 - p, p}, nil
	}

	scores := make([]float64, len(c.Coefficients))
	for i, row := range c.Coefficients {
		scores[i] = dot(row, scaled) + c.Intercepts[i]
	}
	return softmax(scores), nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// LoadScaler reads and validates a scaler artifact.
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scaler artifact: %w", err)
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler artifact malformed: %d means, %d scales", len(s.Mean), len(s.Scale))
	}
	// A zero scale would divide by zero; fitted scalers emit 1 for
	// constant features, but guard against hand-edited artifacts.
	for i, sc := range s.Scale {
		if sc == 0 {
			s.Scale[i] = 1
		}
	}
	return &s, nil
}

// LoadClassifier reads and validates a classifier artifact.
func LoadClassifier(path string) (*LinearClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier artifact: %w", err)
	}
	var c LinearClassifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode classifier artifact: %w", err)
	}
	if len(c.Coefficients) == 0 {
		return nil, fmt.Errorf("classifier artifact malformed: no coefficient rows")
	}
	if len(c.Intercepts) != len(c.Coefficients) {
		return nil, fmt.Errorf("classifier artifact malformed: %d intercepts for %d rows", len(c.Intercepts), len(c.Coefficients))
	}
	width := len(c.Coefficients[0])
	for i, row := range c.Coefficients {
		if len(row) != width {
			return nil, fmt.Errorf("classifier artifact malformed: row %d width %d != %d", i, len(row), width)
		}
	}
	return &c, nil
}
