package scoring

import (
	"fmt"
	"time"
)

// Status strings derived from the predicted label (not the risk tier).
const (
	StatusFraud      = "FRAUD DETECTED"
	StatusLegitimate = "Legitimate transaction"
)

// Result is the prediction response payload. The persisted variant adds
// a generated identifier and the original input fields on top of this.
type Result struct {
	Timestamp        string  `json:"timestamp"`
	FraudPrediction  int     `json:"fraud_prediction"`
	FraudProbability float64 `json:"fraud_probability"`
	RiskLevel        string  `json:"risk_level"`
	Status           string  `json:"status"`
	Confidence       string  `json:"confidence"`
}

// AssembleResult builds the response payload for a classification.
// The timestamp is the capture time of the request, not the time the
// record was persisted.
func AssembleResult(capturedAt time.Time, c *Classification) Result {
	status := StatusLegitimate
	if c.Label == 1 {
		status = StatusFraud
	}
	return Result{
		Timestamp:        capturedAt.UTC().Format(time.RFC3339),
		FraudPrediction:  c.Label,
		FraudProbability: c.Probability,
		RiskLevel:        string(c.Tier),
		Status:           status,
		Confidence:       fmt.Sprintf("%.1f%%", c.Probability*100),
	}
}
