package service

import (
	"context"
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

// SessionIssuer mints and validates signed session credentials.
type SessionIssuer interface {
	GenerateToken(user *models.User) (string, time.Time, error)
	ValidateToken(tokenString string) (*models.SessionClaims, error)
}

// EmailService delivers outbound mail.
type EmailService interface {
	// SendMagicLinkEmail delivers the formatted sign-in link to the address.
	SendMagicLinkEmail(ctx context.Context, toEmail, link string, ttl time.Duration) error
}

// MagicLinkAuthority governs the magic-link lifecycle: issue, look up,
// consume, expire.
type MagicLinkAuthority interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*models.IssuedMagicLink, error)
	CreateForEmail(ctx context.Context, email, name string) (*models.IssuedMagicLink, error)
	FindByToken(ctx context.Context, token string, includeExpired bool) (*models.MagicLink, error)
	MarkUsed(ctx context.Context, token string) (bool, error)
	Verify(ctx context.Context, token string) (*models.User, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// Authenticator is the top-level sign-in flow consumed by the HTTP layer.
type Authenticator interface {
	RequestMagicLink(ctx context.Context, email, name string) error
	VerifyMagicLink(ctx context.Context, rawToken string) (*models.SignInResult, error)
}

// TokenAuthority governs generic typed, revocable tokens.
type TokenAuthority interface {
	Create(ctx context.Context, params CreateTokenParams) (*models.Token, error)
	FindByToken(ctx context.Context, token string) (*models.Token, error)
	IsValid(ctx context.Context, token, tokenType string) bool
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID, tokenType string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
