package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

// ErrUserNotFound is returned when no user row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when a create collides with an existing
// user on the normalized email. Surfaced from the backend's unique
// constraint, never from a racy pre-check.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrNoValidFields is returned when an update patch is empty after the
// allow-list filter.
var ErrNoValidFields = errors.New("no valid fields to update")

// UserPatch carries the mutable user fields. Nil means "leave unchanged".
// Only these fields may ever be updated.
type UserPatch struct {
	Name            *string
	Phone           *string
	IsEmailVerified *bool
}

// UserRepository stores and retrieves user accounts. Implementations
// normalize emails (trim + lowercase) before any lookup or write.
type UserRepository interface {
	// Create inserts a new user. It returns ErrDuplicateEmail when a
	// case-insensitive match already exists.
	Create(ctx context.Context, email, name string) (*models.User, error)

	// FindByEmail returns the user for the normalized email, or
	// ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the user with the given id, or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindOrCreate returns the existing user for the email, creating one
	// when absent. Idempotent across case-varying spellings of the email.
	FindOrCreate(ctx context.Context, email, name string) (*models.User, error)

	// Update mutates the allow-listed fields and stamps updated_at. It
	// returns ErrNoValidFields for an empty patch and ErrUserNotFound when
	// the id has no row.
	Update(ctx context.Context, id string, patch UserPatch) (*models.User, error)

	// Delete removes the user (cascading to owned tokens) and reports
	// whether a row existed. Idempotent.
	Delete(ctx context.Context, id string) (bool, error)

	// MarkVerified sets is_email_verified and records last_login at the
	// given instant.
	MarkVerified(ctx context.Context, id string, at time.Time) error
}
