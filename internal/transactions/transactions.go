// Package transactions persists scored transactions and serves the
// derived history and statistics views.
//
// The table is append-only: a row is written once per successful
// prediction and never updated or deleted.
package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aberkane/fraudsight/internal/encoding"
	"github.com/aberkane/fraudsight/internal/scoring"
)

// DefaultPageSize is the history page size when the config does not
// override it.
const DefaultPageSize = 20

// DefaultDailyWindow is the trailing number of days covered by the
// daily statistics view.
const DefaultDailyWindow = 30

var ErrNotFound = errors.New("transaction not found")

// StoredTransaction is one scored submission plus its verdict.
type StoredTransaction struct {
	ID      string `json:"id"`
	OwnerID string `json:"-"`

	Input encoding.TransactionInput `json:"input"`

	Label       int              `json:"fraud_prediction"`
	Probability float64          `json:"fraud_probability"`
	RiskLevel   scoring.RiskTier `json:"risk_level"`

	CreatedAt time.Time `json:"createdAt"`
}

// New builds a stored row from an encoded submission and its verdict.
func New(ownerID string, enc *encoding.Encoded, c *scoring.Classification, at time.Time) *StoredTransaction {
	return &StoredTransaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Input:       enc.Input,
		Label:       c.Label,
		Probability: c.Probability,
		RiskLevel:   c.Tier,
		CreatedAt:   at.UTC(),
	}
}

// Page is one window of a user's history.
type Page struct {
	Transactions []*StoredTransaction `json:"transactions"`
	NextCursor   string               `json:"nextCursor,omitempty"`
	HasMore      bool                 `json:"hasMore"`
}

// Summary aggregates a scope (one owner, or everything for admins).
type Summary struct {
	Total              int     `json:"total"`
	FraudCount         int     `json:"fraudCount"`
	FraudRate          float64 `json:"fraudRate"`
	AverageProbability float64 `json:"averageProbability"`
}

// CountryCount is one row of the top-countries view.
type CountryCount struct {
	Country    string `json:"country"`
	Count      int    `json:"count"`
	FraudCount int    `json:"fraudCount"`
}

// DailyCount is one day's bucket of the trailing-window view.
type DailyCount struct {
	Day        string `json:"day"` // YYYY-MM-DD (UTC)
	Count      int    `json:"count"`
	FraudCount int    `json:"fraudCount"`
}

// ListQuery selects a history window. An empty OwnerID means global
// scope (admin only, enforced by the handler).
type ListQuery struct {
	OwnerID string
	Cursor  string
	Limit   int
}

// Store persists scored transactions
type Store interface {
	Append(ctx context.Context, tx *StoredTransaction) error
	List(ctx context.Context, q ListQuery) (*Page, error)
	Summarize(ctx context.Context, ownerID string) (*Summary, error)
	TopCountries(ctx context.Context, ownerID string, limit int) ([]CountryCount, error)
	Daily(ctx context.Context, ownerID string, days int) ([]DailyCount, error)
	Count(ctx context.Context) (int, error)
}
