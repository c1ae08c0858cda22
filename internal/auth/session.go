package auth

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = time.Hour

// Session is the result of a successful login. It expires at a fixed instant
// and is never refreshed.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession starts a session for the user at now.
func NewSession(userID int64, username string, now time.Time, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsActive reports whether the session is still valid at now.
func (s *Session) IsActive(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}
