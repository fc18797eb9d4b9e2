package session

import (
	"context"
	"errors"
	"time"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
)

// Session is the record of a logged-in staff member: who they are, the
// bearer token the backend issued for them, and when that token dies.
// ExpiresAt is epoch seconds; a session whose expiry has arrived is dead,
// the boundary instant included.
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"token"`
	User      backend.User `json:"user"`
	ExpiresAt int64        `json:"expiryTime"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// Remaining is the time left until expiry. Negative once expired.
func (s *Session) Remaining(now time.Time) time.Duration {
	return time.Unix(s.ExpiresAt, 0).Sub(now)
}

// Store persists sessions. Token, user and expiry travel together: a Put
// writes all three, a Delete clears all three.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]*Session, error)
}

var (
	ErrNotFound       = errors.New("session not found")
	ErrInvalidSession = errors.New("session token was invalid")
)
