// Package scoring wraps the black-box scaler/classifier pair and maps
// its output onto the three-tier risk scale served to clients.
package scoring

import (
	"errors"
	"fmt"

	"github.com/aberkane/fraudsight/internal/encoding"
	"github.com/aberkane/fraudsight/internal/model"
)

// RiskTier is the three-way bucket derived from the positive-class
// probability.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierModerate RiskTier = "Moderate"
	TierHigh     RiskTier = "High"
)

// Bucketing thresholds over the positive-class probability.
const (
	highThreshold     = 0.70
	moderateThreshold = 0.40
)

// TierFromProbability partitions [0,1] into Low / Moderate / High.
// The boundaries are inclusive on the upper tier: 0.70 is High, 0.40
// is Moderate.
func TierFromProbability(p float64) RiskTier {
	switch {
	case p >= highThreshold:
		return TierHigh
	case p >= moderateThreshold:
		return TierModerate
	default:
		return TierLow
	}
}

// ErrModelUnavailable is returned when either collaborator failed to
// load. It is checked before any input data is touched.
var ErrModelUnavailable = errors.New("model not available")

// InferenceError wraps an unexpected failure inside the scaler or
// classifier call, preserving the original message. Never retried.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Classification is the adapter's verdict on one feature vector.
//
// Label is the argmax over the full class distribution while
// Probability (and therefore Tier) comes from the positive class alone.
// On models with more than two classes, or at numerical ties, the two
// can disagree; that divergence matches the trained model's historical
// behavior and is kept on purpose.
type Classification struct {
	Label       int
	Probability float64
	Tier        RiskTier
}

// Adapter delegates to the injected scaler and classifier.
type Adapter struct {
	scaler     model.Scaler
	classifier model.Classifier
}

// NewAdapter builds an adapter over explicit collaborators. Either may
// be nil, in which case Classify fails fast with ErrModelUnavailable.
func NewAdapter(scaler model.Scaler, classifier model.Classifier) *Adapter {
	return &Adapter{scaler: scaler, classifier: classifier}
}

// NewAdapterFromHandle builds an adapter over a loaded artifact handle.
func NewAdapterFromHandle(h *model.Handle) *Adapter {
	return NewAdapter(h.Scaler(), h.Classifier())
}

// Available reports whether both collaborators are loaded.
func (a *Adapter) Available() bool {
	return a.scaler != nil && a.classifier != nil
}

// Classify scales the vector, runs inference, and buckets the result.
func (a *Adapter) Classify(vector encoding.FeatureVector) (*Classification, error) {
	if !a.Available() {
		return nil, ErrModelUnavailable
	}

	scaled, err := a.scaler.Transform(vector.Values())
	if err != nil {
		return nil, &InferenceError{Err: err}
	}

	probs, err := a.classifier.PredictProbabilities(scaled)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	if len(probs) == 0 {
		return nil, &InferenceError{Err: errors.New("classifier returned empty distribution")}
	}

	positive := positiveIndex(a.classifier.Classes(), len(probs))
	if positive >= len(probs) {
		return nil, &InferenceError{Err: fmt.Errorf("positive class index %d out of range for %d classes", positive, len(probs))}
	}

	p := probs[positive]
	return &Classification{
		Label:       argmax(probs),
		Probability: p,
		Tier:        TierFromProbability(p),
	}, nil
}

// positiveIndex locates the probability slot for the fraud class. When
// label 1 is absent from the model's classes the adapter falls back to
// index 1 of the distribution.
func positiveIndex(classes []int, _ int) int {
	for i, c := range classes {
		if c == 1 {
			return i
		}
	}
	return 1
}

func argmax(probs []float64) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}
