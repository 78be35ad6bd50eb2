package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

// ErrMagicLinkNotFound is returned when a link is absent, already used or,
// unless the caller explicitly includes expired rows, past its expiry. The
// three cases are deliberately indistinguishable.
var ErrMagicLinkNotFound = errors.New("magic link not found or invalid")

// MagicLinkRepository stores single-use sign-in links.
type MagicLinkRepository interface {
	// Create persists a new unused link for the user.
	Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.MagicLink, error)

	// FindByToken returns an unused link. Expired links are excluded unless
	// includeExpired is set. Everything else returns ErrMagicLinkNotFound.
	FindByToken(ctx context.Context, token string, includeExpired bool) (*models.MagicLink, error)

	// MarkUsed flips is_used to true only if it is currently false, as a
	// single conditional update. It reports whether a row was affected, so
	// an already-consumed token is a no-op rather than an error.
	MarkUsed(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes every link whose expiry has passed and returns
	// the count removed. Safe to run repeatedly.
	DeleteExpired(ctx context.Context) (int64, error)
}
