package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

// Distinct validation failures, surfaced so callers can log the reason.
// The HTTP boundary collapses all of them to a generic unauthorized.
var (
	ErrSessionTokenMalformed = errors.New("session token is malformed")
	ErrSessionTokenSignature = errors.New("session token signature is invalid")
	ErrSessionTokenExpired   = errors.New("session token is expired")
)

// DefaultSessionDuration is the policy default for session credentials.
const DefaultSessionDuration = 7 * 24 * time.Hour

var _ SessionIssuer = (*JWTService)(nil)

// JWTService mints HS256 session credentials bound to a user identity.
type JWTService struct {
	jwtSecret []byte
	duration  time.Duration
}

// NewJWTService creates a JWTService. A non-positive duration falls back to
// the 7-day default.
func NewJWTService(secret string, duration time.Duration) *JWTService {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &JWTService{jwtSecret: []byte(secret), duration: duration}
}

// GenerateToken creates a new signed session credential for a verified user.
func (s *JWTService) GenerateToken(user *models.User) (string, time.Time, error) {
	now := db.NowUTC()
	exp := now.Add(s.duration)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iss":   "scs-link-auth",
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, exp, nil
}

// ValidateToken checks an inbound credential and returns its claims. The
// failure reason is one of the sentinel errors above.
func (s *JWTService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrSessionTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSessionTokenSignature
		default:
			return nil, ErrSessionTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrSessionTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrSessionTokenMalformed
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, ErrSessionTokenMalformed
	}
	email, _ := claims["email"].(string)

	out := &models.SessionClaims{UserID: userID, Email: email}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	return out, nil
}
