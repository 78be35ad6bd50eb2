package models

import (
	"time"
)

// MagicLink is a single-use, time-bound sign-in token owned by a user.
// IsUsed only ever moves from false to true.
type MagicLink struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	IsUsed    bool      `json:"isUsed"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsExpired reports whether the link's expiry has passed at the given instant.
func (m *MagicLink) IsExpired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}
