package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a scoreboard operator. Host credentials are never serialized.
type User struct {
	ID              int        `json:"id"`
	Login           string     `json:"login"`
	PasswordHash    string     `json:"-"`
	ClientToken     uuid.UUID  `json:"client_token"`
	ChallongeAPIKey string     `json:"-"`
	StartGGToken    *TokenInfo `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAuthedAt    *time.Time `json:"last_authed_at,omitempty"`
}

// TokenInfo is an OAuth token set for start.gg.
type TokenInfo struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// ExpiresWithin reports whether the access token is expired or will be within d.
// A zero ExpiresAt marks a personal token that never expires.
func (t *TokenInfo) ExpiresWithin(now time.Time, d time.Duration) bool {
	if t == nil {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(t.ExpiresAt)
}

type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
