package model

import "time"

// Session binds an opaque bearer token to a user.
// Only the SHA-256 of the token is stored; at most one session exists per user.
type Session struct {
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time // zero means the session never expires
}

// IsExpired reports whether the session has passed its expiry at the given instant.
func (s *Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}
