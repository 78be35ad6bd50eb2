package models

import (
	"time"
)

// IssuedMagicLink is returned when a new magic link is created.
type IssuedMagicLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// SignInResult carries the session credential minted after a successful
// magic-link verification.
type SignInResult struct {
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         *User     `json:"user"`
}

// SessionClaims are the verified contents of a session credential.
type SessionClaims struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
