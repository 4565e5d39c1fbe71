package session

import (
	"context"
	"database/sql"
)

// PostgresStore persists sessions in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed session store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create stores a new session
func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token_hash, user_id, created_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.TokenHash, s.UserID, s.CreatedAt, s.ExpiresAt, s.Revoked)
	return err
}

// GetByHash retrieves a live session by its token hash
func (p *PostgresStore) GetByHash(ctx context.Context, hash string) (*Session, error) {
	s := &Session{}
	err := p.db.QueryRowContext(ctx, `
		SELECT id, token_hash, user_id, created_at, expires_at, revoked
		FROM sessions WHERE token_hash = $1
		  AND revoked = FALSE
		  AND expires_at > NOW()
	`, hash).Scan(&s.ID, &s.TokenHash, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.Revoked)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Revoke marks a session revoked
func (p *PostgresStore) Revoke(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE sessions SET revoked = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions past their expiry
func (p *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Migrate creates the sessions table if it doesn't exist
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id              VARCHAR(36) PRIMARY KEY,
			token_hash      VARCHAR(64) NOT NULL UNIQUE,
			user_id         VARCHAR(36) NOT NULL,
			created_at      TIMESTAMPTZ DEFAULT NOW(),
			expires_at      TIMESTAMPTZ NOT NULL,
			revoked         BOOLEAN DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_hash ON sessions(token_hash);
		CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	`)
	return err
}
