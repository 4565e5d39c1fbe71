package transactions

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/aberkane/fraudsight/internal/pagination"
	"github.com/aberkane/fraudsight/internal/scoring"
)

// PostgresStore persists scored transactions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed transaction store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const txColumns = `
	id, owner_id,
	gender, age, house_type_id, contact_availability_id, home_country,
	account_no, card_expiry_date, transaction_amount, transaction_country,
	large_purchase, product_id, cif, transaction_currency_code,
	label, probability, risk_level, created_at`

// Append inserts one scored transaction. Single statement, so each
// prediction is atomic without an explicit transaction.
func (p *PostgresStore) Append(ctx context.Context, tx *StoredTransaction) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (`+txColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		tx.ID, tx.OwnerID,
		tx.Input.Gender, tx.Input.Age, tx.Input.HouseTypeID, tx.Input.ContactAvailabilityID, tx.Input.HomeCountry,
		tx.Input.AccountNo, tx.Input.CardExpiryDate, tx.Input.TransactionAmount, tx.Input.TransactionCountry,
		tx.Input.LargePurchase, tx.Input.ProductID, tx.Input.CIF, tx.Input.TransactionCurrencyCode,
		tx.Label, tx.Probability, string(tx.RiskLevel), tx.CreatedAt,
	)
	return err
}

func scanTx(scan func(dest ...any) error) (*StoredTransaction, error) {
	tx := &StoredTransaction{}
	var risk string
	err := scan(
		&tx.ID, &tx.OwnerID,
		&tx.Input.Gender, &tx.Input.Age, &tx.Input.HouseTypeID, &tx.Input.ContactAvailabilityID, &tx.Input.HomeCountry,
		&tx.Input.AccountNo, &tx.Input.CardExpiryDate, &tx.Input.TransactionAmount, &tx.Input.TransactionCountry,
		&tx.Input.LargePurchase, &tx.Input.ProductID, &tx.Input.CIF, &tx.Input.TransactionCurrencyCode,
		&tx.Label, &tx.Probability, &risk, &tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.RiskLevel = scoring.RiskTier(risk)
	return tx, nil
}

// List returns one history page, newest first, keyed by (created_at, id).
func (p *PostgresStore) List(ctx context.Context, q ListQuery) (*Page, error) {
	cursor, err := pagination.Decode(q.Cursor)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	query := `SELECT ` + txColumns + ` FROM transactions WHERE 1=1`
	args := []any{}

	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		query += ` AND owner_id = $1`
	}
	if cursor != nil {
		base := len(args)
		args = append(args, cursor.CreatedAt, cursor.ID)
		query += ` AND (created_at, id) < ($` + strconv.Itoa(base+1) + `, $` + strconv.Itoa(base+2) + `)`
	}
	args = append(args, limit+1)
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []*StoredTransaction{}
	for rows.Next() {
		tx, err := scanTx(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, next, more := pagination.ComputePage(items, limit, func(tx *StoredTransaction) (time.Time, string) {
		return tx.CreatedAt, tx.ID
	})
	return &Page{Transactions: items, NextCursor: next, HasMore: more}, nil
}

// Summarize aggregates one owner's rows, or everything when ownerID is
// empty.
func (p *PostgresStore) Summarize(ctx context.Context, ownerID string) (*Summary, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE label = 1),
		       COALESCE(AVG(probability), 0)
		FROM transactions`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}

	sum := &Summary{}
	err := p.db.QueryRowContext(ctx, query, args...).Scan(&sum.Total, &sum.FraudCount, &sum.AverageProbability)
	if err != nil {
		return nil, err
	}
	if sum.Total > 0 {
		sum.FraudRate = float64(sum.FraudCount) / float64(sum.Total)
	}
	return sum, nil
}

// TopCountries returns the most frequent transaction countries.
func (p *PostgresStore) TopCountries(ctx context.Context, ownerID string, limit int) ([]CountryCount, error) {
	query := `
		SELECT transaction_country,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE label = 1)
		FROM transactions`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	args = append(args, limit)
	query += `
		GROUP BY transaction_country
		ORDER BY COUNT(*) DESC, transaction_country ASC
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []CountryCount{}
	for rows.Next() {
		var cc CountryCount
		if err := rows.Scan(&cc.Country, &cc.Count, &cc.FraudCount); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

// Daily returns per-day buckets for the trailing window.
func (p *PostgresStore) Daily(ctx context.Context, ownerID string, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = DefaultDailyWindow
	}

	query := `
		SELECT TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE label = 1)
		FROM transactions
		WHERE created_at > NOW() - ($1 || ' days')::interval`
	args := []any{days}
	if ownerID != "" {
		args = append(args, ownerID)
		query += ` AND owner_id = $2`
	}
	query += `
		GROUP BY day
		ORDER BY day ASC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []DailyCount{}
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count, &dc.FraudCount); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

// Migrate creates the transactions table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id                          VARCHAR(36) PRIMARY KEY,
			owner_id                    VARCHAR(36) NOT NULL,
			gender                      VARCHAR(32) NOT NULL,
			age                         DOUBLE PRECISION NOT NULL,
			house_type_id               BIGINT NOT NULL,
			contact_availability_id     BIGINT NOT NULL,
			home_country                VARCHAR(128) NOT NULL,
			account_no                  VARCHAR(64) NOT NULL,
			card_expiry_date            VARCHAR(32) NOT NULL,
			transaction_amount          DOUBLE PRECISION NOT NULL,
			transaction_country         VARCHAR(128) NOT NULL,
			large_purchase              BIGINT NOT NULL,
			product_id                  BIGINT NOT NULL,
			cif                         VARCHAR(64) NOT NULL,
			transaction_currency_code   VARCHAR(16) NOT NULL,
			label                       INTEGER NOT NULL,
			probability                 DOUBLE PRECISION NOT NULL,
			risk_level                  VARCHAR(16) NOT NULL,
			created_at                  TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions(owner_id, created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_country ON transactions(transaction_country);
	`)
	return err
}

