// Package auth is the storefront's local identity provider: bcrypt
// password accounts in memory or Postgres, HS256 ID tokens and mailed
// password-reset links.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID          string
	Email       string
	DisplayName string
	Hash        []byte
}

type UserStore interface {
	Create(ctx context.Context, u User, password string) error
	Verify(ctx context.Context, email, password string) (User, error)
	Lookup(ctx context.Context, email string) (User, error)
	SetPassword(ctx context.Context, id, password string) error
	Ping(ctx context.Context) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
