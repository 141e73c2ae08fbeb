package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedSessionPrefix = "session:revoked:"
	sessionCutoffPrefix  = "session:cutoff:"
)

// SessionStore implements repository.SessionStore as a Redis denylist of
// session token ids. Entries expire with the token they revoke.
type SessionStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewSessionStore creates a new Redis-backed session revocation store.
func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

// Revoke denylists tokenID until expiresAt. Already expired tokens need no entry.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, revokedSessionPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked session: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedSessionPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists revoked session: %w", err)
	}
	return n > 0, nil
}

// RevokeUserSessions invalidates every session of userID issued before at.
// The cutoff is kept for ttl, after which no older session can still be live.
func (s *SessionStore) RevokeUserSessions(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionCutoffPrefix+userID, at.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set session cutoff: %w", err)
	}
	return nil
}

// SessionsRevokedBefore returns the user's session cutoff, or the zero time
// when none is recorded.
func (s *SessionStore) SessionsRevokedBefore(ctx context.Context, userID string) (time.Time, error) {
	raw, err := s.client.Get(ctx, sessionCutoffPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis get session cutoff: %w", err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse session cutoff %q: %w", raw, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}
