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

// ErrInvalidOrExpiredLink is the single externally visible failure for a
// magic link that is absent, already used or past its expiry. Collapsing the
// three cases prevents token enumeration.
var ErrInvalidOrExpiredLink = errors.New("magic link is invalid or expired")

// DefaultMagicLinkTTL is the policy default for newly issued links.
const DefaultMagicLinkTTL = 15 * time.Minute

var _ MagicLinkAuthority = (*MagicLinkService)(nil)

// MagicLinkService issues and consumes single-use sign-in links. A link's
// lifecycle is Created -> Used, or Created -> Expired once the clock passes
// expires_at; both end states are terminal.
type MagicLinkService struct {
	users repository.UserRepository
	links repository.MagicLinkRepository
	ttl   time.Duration
}

// NewMagicLinkService creates a MagicLinkService. A non-positive ttl falls
// back to the 15-minute default.
func NewMagicLinkService(users repository.UserRepository, links repository.MagicLinkRepository, ttl time.Duration) *MagicLinkService {
	if ttl <= 0 {
		ttl = DefaultMagicLinkTTL
	}
	return &MagicLinkService{users: users, links: links, ttl: ttl}
}

// Create issues a new link for an existing user. Outstanding links for the
// same user stay valid; issuance never invalidates them.
func (s *MagicLinkService) Create(ctx context.Context, userID string, ttl time.Duration) (*models.IssuedMagicLink, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := newSecretToken()
	if err != nil {
		return nil, err
	}

	link, err := s.links.Create(ctx, user.ID, token, db.NowUTC().Add(ttl))
	if err != nil {
		return nil, err
	}

	log.Info().Str("userId", user.ID).Time("expiresAt", link.ExpiresAt).Msg("magic link issued")
	return &models.IssuedMagicLink{Token: link.Token, ExpiresAt: link.ExpiresAt, User: user}, nil
}

// CreateForEmail issues a link for the address, creating the user first when
// none exists.
func (s *MagicLinkService) CreateForEmail(ctx context.Context, email, name string) (*models.IssuedMagicLink, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	user, err := s.users.FindOrCreate(ctx, email, name)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, user.ID, s.ttl)
}

// FindByToken returns the link only while it is consumable: unused and,
// unless includeExpired is set, unexpired.
func (s *MagicLinkService) FindByToken(ctx context.Context, token string, includeExpired bool) (*models.MagicLink, error) {
	if token == "" {
		return nil, repository.ErrMagicLinkNotFound
	}
	return s.links.FindByToken(ctx, token, includeExpired)
}

// MarkUsed consumes the link. It reports false, not an error, when the link
// was already consumed.
func (s *MagicLinkService) MarkUsed(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.links.MarkUsed(ctx, token)
}

// Verify consumes the link and returns its owner with the email marked
// verified and last_login stamped. The link is marked used before anything
// else succeeds, so a verification that errors afterwards is still not
// replayable. Absent, used and expired links all fail identically.
func (s *MagicLinkService) Verify(ctx context.Context, token string) (*models.User, error) {
	link, err := s.FindByToken(ctx, token, false)
	if err != nil {
		if errors.Is(err, repository.ErrMagicLinkNotFound) {
			return nil, ErrInvalidOrExpiredLink
		}
		return nil, err
	}

	used, err := s.links.MarkUsed(ctx, link.Token)
	if err != nil {
		return nil, err
	}
	if !used {
		// A concurrent verification won the conditional update.
		return nil, ErrInvalidOrExpiredLink
	}

	now := db.NowUTC()
	if err := s.users.MarkVerified(ctx, link.UserID, now); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, link.UserID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("userId", user.ID).Msg("magic link verified")
	return user, nil
}

// DeleteExpired removes links past their expiry and returns the count.
func (s *MagicLinkService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.links.DeleteExpired(ctx)
}
