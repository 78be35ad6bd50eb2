package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

var _ Authenticator = (*AuthService)(nil)

// AuthService composes the magic-link authority, the session issuer and
// outbound email into the two top-level sign-in operations.
type AuthService struct {
	links    MagicLinkAuthority
	sessions SessionIssuer
	email    EmailService
	baseURL  string
	linkTTL  time.Duration
}

// NewAuthService creates an AuthService. baseURL is only ever used to format
// the outward-facing link string.
func NewAuthService(links MagicLinkAuthority, sessions SessionIssuer, email EmailService, baseURL string, linkTTL time.Duration) *AuthService {
	if linkTTL <= 0 {
		linkTTL = DefaultMagicLinkTTL
	}
	return &AuthService{links: links, sessions: sessions, email: email, baseURL: baseURL, linkTTL: linkTTL}
}

// RequestMagicLink finds or creates the user for the address, issues a link
// and emails it.
func (s *AuthService) RequestMagicLink(ctx context.Context, email, name string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}

	issued, err := s.links.CreateForEmail(ctx, email, name)
	if err != nil {
		return fmt.Errorf("issue magic link: %w", err)
	}

	link := s.baseURL + "/auth/verify?token=" + url.QueryEscape(issued.Token)
	if err := s.email.SendMagicLinkEmail(ctx, issued.User.Email, link, s.linkTTL); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}

	log.Info().Str("userId", issued.User.ID).Msg("magic link requested")
	return nil
}

// VerifyMagicLink consumes the link and mints a session credential for its
// owner. Invalid, used and expired links all fail with
// ErrInvalidOrExpiredLink.
func (s *AuthService) VerifyMagicLink(ctx context.Context, rawToken string) (*models.SignInResult, error) {
	user, err := s.links.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	sessionToken, expiresAt, err := s.sessions.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("mint session credential: %w", err)
	}

	return &models.SignInResult{SessionToken: sessionToken, ExpiresAt: expiresAt, User: user}, nil
}
