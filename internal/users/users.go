// Package users manages dashboard accounts.
//
// Accounts carry a bcrypt password hash and a binary role. Password
// reset and richer role models are out of scope; the admin role exists
// so operators can see global statistics instead of their own rows.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aberkane/fraudsight/internal/idgen"
	"github.com/aberkane/fraudsight/internal/validation"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Errors
var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrBadCredential = errors.New("invalid username or password")
)

// User is a dashboard account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Store persists accounts.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

// New builds an account with a freshly hashed password. Usernames are
// stored lowercase so lookups are case-insensitive.
func New(username, email, password, role string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !validation.IsValidUsername(username) {
		return nil, errors.New("username must be 3-64 lowercase letters, digits, dots, dashes, or underscores")
	}
	if role != RoleAdmin {
		role = RoleUser
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           idgen.WithPrefix("usr_"),
		Username:     username,
		Email:        validation.SanitizeString(email, 254),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Authenticate looks up the account and verifies the password. The
// error is the same whether the username or the password is wrong.
func Authenticate(ctx context.Context, store Store, username, password string) (*User, error) {
	u, err := store.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, ErrBadCredential
	}
	if !u.CheckPassword(password) {
		return nil, ErrBadCredential
	}
	return u, nil
}
