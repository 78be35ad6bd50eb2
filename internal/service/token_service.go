package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository"
)

// ErrInvalidOrExpiredToken is the single externally visible failure for a
// token that is absent, revoked or past its expiry.
var ErrInvalidOrExpiredToken = errors.New("token is invalid or expired")

// CreateTokenParams describes a token to issue. Exactly one of TTL or
// ExpiresAt should be set; TTL wins when both are.
type CreateTokenParams struct {
	UserID    string
	Type      string
	TTL       time.Duration
	ExpiresAt time.Time
	Metadata  map[string]any
}

var _ TokenAuthority = (*TokenService)(nil)

// TokenService issues generic typed tokens (refresh, verification, ...) with
// expiry and revocation, independent of magic links.
type TokenService struct {
	tokens repository.TokenRepository
}

// NewTokenService creates a TokenService.
func NewTokenService(tokens repository.TokenRepository) *TokenService {
	return &TokenService{tokens: tokens}
}

// Create issues a new token of the given type.
func (s *TokenService) Create(ctx context.Context, params CreateTokenParams) (*models.Token, error) {
	if params.UserID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if params.Type == "" {
		return nil, errors.New("token type cannot be empty")
	}

	expiresAt := params.ExpiresAt
	if params.TTL > 0 {
		expiresAt = db.NowUTC().Add(params.TTL)
	}
	if expiresAt.IsZero() {
		return nil, errors.New("token expiry must be set")
	}

	value, err := newSecretToken()
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Create(ctx, repository.NewTokenParams{
		UserID:    params.UserID,
		Token:     value,
		Type:      params.Type,
		ExpiresAt: expiresAt,
		Metadata:  params.Metadata,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("userId", token.UserID).Str("type", token.Type).Time("expiresAt", token.ExpiresAt).Msg("token issued")
	return token, nil
}

// FindByToken returns the valid token, or ErrInvalidOrExpiredToken when it
// is absent, revoked or expired.
func (s *TokenService) FindByToken(ctx context.Context, token string) (*models.Token, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	t, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	if t.IsRevoked || t.IsExpired(db.NowUTC()) {
		return nil, ErrInvalidOrExpiredToken
	}
	return t, nil
}

// IsValid reports whether the token is usable: not revoked, not expired and,
// when tokenType is non-empty, of that type. It never returns an error;
// every failure degrades to false because callers use it purely as a gate.
func (s *TokenService) IsValid(ctx context.Context, token, tokenType string) bool {
	t, err := s.FindByToken(ctx, token)
	if err != nil {
		return false
	}
	if tokenType != "" && t.Type != tokenType {
		return false
	}
	return true
}

// Revoke flips the token to revoked. The second call on an already-revoked
// token reports false with no error.
func (s *TokenService) Revoke(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.tokens.Revoke(ctx, token)
}

// RevokeAllForUser revokes every live token of the user, optionally
// restricted to one type. Returns the count revoked.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID, tokenType string) (int64, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty")
	}
	count, err := s.tokens.RevokeAllForUser(ctx, userID, tokenType)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info().Str("userId", userID).Str("type", tokenType).Int64("count", count).Msg("tokens revoked")
	}
	return count, nil
}

// DeleteExpired removes tokens past their expiry and returns the count.
func (s *TokenService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx)
}
