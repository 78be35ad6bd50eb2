package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

// ErrTokenNotFound is returned when no token row matches the lookup.
var ErrTokenNotFound = errors.New("token not found or invalid")

// NewTokenParams describes a typed token to persist.
type NewTokenParams struct {
	UserID    string
	Token     string
	Type      string
	ExpiresAt time.Time
	Metadata  map[string]any
}

// TokenRepository stores generic typed, revocable tokens.
type TokenRepository interface {
	// Create persists a new unrevoked token.
	Create(ctx context.Context, params NewTokenParams) (*models.Token, error)

	// FindByToken returns the token row regardless of its state, or
	// ErrTokenNotFound. Validity checks are the caller's concern.
	FindByToken(ctx context.Context, token string) (*models.Token, error)

	// Revoke flips is_revoked to true only if it is currently false, as a
	// single conditional update. It reports whether a row was affected.
	Revoke(ctx context.Context, token string) (bool, error)

	// RevokeAllForUser revokes every unrevoked token owned by the user,
	// optionally restricted to one type (empty string means all types).
	// Returns the number of tokens revoked.
	RevokeAllForUser(ctx context.Context, userID, tokenType string) (int64, error)

	// DeleteExpired removes every token whose expiry has passed and returns
	// the count removed. Safe to run repeatedly.
	DeleteExpired(ctx context.Context) (int64, error)
}
