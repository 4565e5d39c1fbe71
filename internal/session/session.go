// Package session provides cookie authentication for FraudSight.
//
// Authentication model:
// - Public endpoints (health, metrics): No auth required
// - API endpoints (predict, history, stats): Require a logged-in session
// - Sessions are issued on login and carried in an HTTP-only cookie
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// CookieName is the session cookie set on login.
const CookieName = "fraudsight_session"

// DefaultLifetime is the session lifetime when the config does not
// override it.
const DefaultLifetime = 24 * time.Hour

// Errors
var (
	ErrNoSession      = errors.New("session required")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrNotFound       = errors.New("session not found")
)

// Session represents one logged-in browser.
type Session struct {
	ID        string    `json:"id"`
	TokenHash string    `json:"-"` // SHA256 hash of the token (stored)
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

// Store persists sessions
type Store interface {
	Create(ctx context.Context, s *Session) error
	GetByHash(ctx context.Context, hash string) (*Session, error)
	Revoke(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// Manager issues and validates sessions.
type Manager struct {
	store    Store
	lifetime time.Duration
}

// NewManager creates a session manager. A non-positive lifetime falls
// back to DefaultLifetime.
func NewManager(store Store, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Manager{store: store, lifetime: lifetime}
}

// Lifetime returns the configured session lifetime.
func (m *Manager) Lifetime() time.Duration { return m.lifetime }

// Issue creates a new session for a user.
// Returns the raw token (set in the cookie, shown once) and the stored
// metadata.
func (m *Manager) Issue(ctx context.Context, userID string) (rawToken string, s *Session, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", nil, err
	}

	rawToken = "sess_" + hex.EncodeToString(b)

	now := time.Now().UTC()
	s = &Session{
		ID:        "sid_" + hex.EncodeToString(b[:8]),
		TokenHash: hashToken(rawToken),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.lifetime),
	}

	if err := m.store.Create(ctx, s); err != nil {
		return "", nil, err
	}

	return rawToken, s, nil
}

// Validate resolves a raw token to its session metadata.
func (m *Manager) Validate(ctx context.Context, rawToken string) (*Session, error) {
	if rawToken == "" {
		return nil, ErrNoSession
	}

	rawToken = strings.TrimSpace(rawToken)
	if !strings.HasPrefix(rawToken, "sess_") {
		return nil, ErrInvalidSession
	}

	s, err := m.store.GetByHash(ctx, hashToken(rawToken))
	if err != nil {
		return nil, ErrInvalidSession
	}

	if s.Revoked || time.Now().After(s.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	return s, nil
}

// Revoke invalidates a session by raw token. Used on logout; revoking
// an unknown token is not an error.
func (m *Manager) Revoke(ctx context.Context, rawToken string) error {
	s, err := m.store.GetByHash(ctx, hashToken(rawToken))
	if err != nil {
		return nil
	}
	return m.store.Revoke(ctx, s.ID)
}

// PruneExpired deletes sessions past their expiry and returns how many
// were removed. Validate already rejects expired tokens at read time;
// this reclaims the rows. Run from the admin CLI, there is no
// background sweeper.
func (m *Manager) PruneExpired(ctx context.Context) (int, error) {
	return m.store.DeleteExpired(ctx)
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
