// Package predict runs the scoring pipeline behind the prediction
// endpoint: validate the submission, encode it, classify it, persist
// the verdict, and feed the realtime dashboard.
package predict

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aberkane/fraudsight/internal/encoding"
	"github.com/aberkane/fraudsight/internal/logging"
	"github.com/aberkane/fraudsight/internal/metrics"
	"github.com/aberkane/fraudsight/internal/realtime"
	"github.com/aberkane/fraudsight/internal/scoring"
	"github.com/aberkane/fraudsight/internal/traces"
	"github.com/aberkane/fraudsight/internal/transactions"
	"github.com/aberkane/fraudsight/internal/validation"
)

// Engine scores one encoded feature vector.
type Engine interface {
	Available() bool
	Classify(vector encoding.FeatureVector) (*scoring.Classification, error)
}

// Service orchestrates one prediction end to end.
type Service struct {
	engine Engine
	store  transactions.Store
	hub    *realtime.Hub // optional

	minAmount float64
	maxAmount float64
}

// NewService creates a prediction service. The hub may be nil when the
// realtime feed is disabled.
func NewService(engine Engine, store transactions.Store, hub *realtime.Hub) *Service {
	return &Service{engine: engine, store: store, hub: hub}
}

// SetAmountBounds configures the advisory operating range for
// transaction amounts. Out-of-range submissions are still scored, only
// flagged in the logs for review.
func (s *Service) SetAmountBounds(min, max float64) {
	s.minAmount, s.maxAmount = min, max
}

// Available reports whether the underlying model can serve verdicts.
func (s *Service) Available() bool {
	return s.engine.Available()
}

// Predict validates and scores one raw submission, persists it under
// the owner, and broadcasts the verdict. The returned error is one of
// the encoding or scoring error types, or a storage failure.
func (s *Service) Predict(ctx context.Context, ownerID string, raw map[string]any) (*scoring.Result, error) {
	ctx, span := traces.StartSpan(ctx, "predict", traces.UserID(ownerID))
	defer span.End()

	start := time.Now()

	if err := encoding.ValidateRequired(raw); err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("missing_field").Inc()
		return nil, err
	}

	enc, err := encoding.Encode(raw)
	if err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("invalid_field").Inc()
		return nil, err
	}

	if (s.minAmount > 0 || s.maxAmount > 0) &&
		!validation.AmountWithinBounds(enc.Input.TransactionAmount, s.minAmount, s.maxAmount) {
		logging.L(ctx).Warn("transaction amount outside operating range",
			"owner_id", ownerID,
			"amount", enc.Input.TransactionAmount)
	}

	c, err := s.engine.Classify(enc.Vector)
	if err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("inference").Inc()
		logging.L(ctx).Error("classification failed", "error", err)
		return nil, err
	}

	span.SetAttributes(traces.Label(c.Label), traces.Probability(c.Probability), traces.RiskLevel(string(c.Tier)))

	now := time.Now()
	tx := transactions.New(ownerID, enc, c, now)
	if err := s.store.Append(ctx, tx); err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("storage").Inc()
		logging.L(ctx).Error("failed to persist transaction", "error", err)
		return nil, fmt.Errorf("persist transaction: %w", err)
	}
	span.SetAttributes(traces.TransactionID(tx.ID))

	metrics.PredictionsTotal.WithLabelValues(strconv.Itoa(c.Label), string(c.Tier)).Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	if s.hub != nil {
		s.hub.BroadcastPrediction(map[string]interface{}{
			"risk_level":          string(c.Tier),
			"fraud_prediction":    c.Label,
			"fraud_probability":   c.Probability,
			"transaction_country": enc.Input.TransactionCountry,
			"amount":              enc.Input.TransactionAmount,
		})
	}

	logging.L(ctx).Info("prediction served",
		"transaction_id", tx.ID,
		"label", c.Label,
		"risk_level", c.Tier,
	)

	result := scoring.AssembleResult(now, c)
	return &result, nil
}
