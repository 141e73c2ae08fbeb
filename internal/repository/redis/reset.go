package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/pmaxcam/review-website/pkg/errors"
)

const resetTokenPrefix = "password_reset:"

// ResetTokenStore implements repository.ResetTokenStore. Only the SHA-256 of
// each token is used as the key.
type ResetTokenStore struct {
	client redis.Cmdable
}

// NewResetTokenStore creates a new Redis-backed reset token store.
func NewResetTokenStore(client redis.Cmdable) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// Save binds token to userID for ttl.
func (s *ResetTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set reset token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes token, so each token works once.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("redis getdel reset token: %w", err)
	}
	return userID, nil
}

func resetKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return resetTokenPrefix + hex.EncodeToString(h[:])
}
