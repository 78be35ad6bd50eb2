package models

import (
	"time"
)

// Token is a generic typed credential (e.g. "refresh", "verification")
// with expiry and revocation. Lookups are always scoped by type.
type Token struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Token     string         `json:"token"`
	Type      string         `json:"type"`
	IsRevoked bool           `json:"isRevoked"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// IsExpired reports whether the token's expiry has passed at the given instant.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
