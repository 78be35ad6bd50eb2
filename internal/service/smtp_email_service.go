package service

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/config"
)

var _ EmailService = (*SMTPEmailService)(nil)
var _ EmailService = (*LogEmailService)(nil)

// SMTPEmailService delivers mail through a plain SMTP relay.
type SMTPEmailService struct {
	cfg *config.SmtpConfig
}

type unencryptedAuth struct {
	smtp.Auth
}

func (a unencryptedAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	s := *server
	s.TLS = true
	return a.Auth.Start(&s)
}

// NewSMTPEmailService creates an SMTPEmailService.
func NewSMTPEmailService(smtpCfg *config.SmtpConfig) *SMTPEmailService {
	if smtpCfg == nil {
		log.Warn().Msg("SMTP configuration is nil. Email sending will likely fail.")
		return &SMTPEmailService{cfg: &config.SmtpConfig{}}
	}
	return &SMTPEmailService{cfg: smtpCfg}
}

// SendMagicLinkEmail sends the sign-in link to the address.
func (s *SMTPEmailService) SendMagicLinkEmail(ctx context.Context, toEmail, link string, ttl time.Duration) error {
	if s.cfg.Host == "" || s.cfg.User == "" || s.cfg.Port == "" {
		log.Error().Str("toEmail", toEmail).Msg("SMTP host, user, or port not configured. Cannot send magic link email.")
		return fmt.Errorf("SMTP service not fully configured (host, user, or port missing)")
	}

	subject := "Your sign-in link"
	body := fmt.Sprintf(
		"Hello,\n\nClick the link below to sign in:\n\n%s\n\nThis link can be used once and expires in %d minutes.\n\nIf you did not request this, please ignore this email.",
		link, int(ttl.Minutes()))
	date := time.Now().UTC().Format(time.RFC1123Z)
	smtpAddr := s.cfg.Host + ":" + s.cfg.Port

	msg := []byte("To: " + toEmail +
		"\r\nFrom: " + s.cfg.User +
		"\r\nSubject: " + subject +
		"\r\nDate: " + date +
		"\r\nContent-Type: text/plain; charset=UTF-8" +
		"\r\n\r\n" + body)

	auth := unencryptedAuth{smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)}
	if err := smtp.SendMail(smtpAddr, auth, s.cfg.User, []string{toEmail}, msg); err != nil {
		log.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send magic link email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("toEmail", toEmail).Msg("Magic link email sent")
	return nil
}

// LogEmailService logs the link instead of sending it. Used in dev and test
// environments.
type LogEmailService struct{}

// NewLogEmailService creates a LogEmailService.
func NewLogEmailService() *LogEmailService {
	return &LogEmailService{}
}

func (s *LogEmailService) SendMagicLinkEmail(ctx context.Context, toEmail, link string, ttl time.Duration) error {
	log.Info().Str("toEmail", toEmail).Str("link", link).Dur("ttl", ttl).Msg("magic link email (local dev)")
	return nil
}
