package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pmaxcam/review-website/internal/domain"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
)

const productKeyPrefix = "product:"

// ProductCache implements repository.ProductCache. Products are immutable,
// so entries only ever go stale by expiring.
type ProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewProductCache creates a product cache whose entries live for ttl.
func NewProductCache(client redis.Cmdable, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

// Get returns a cached product or apperrors.ErrNotFound on a miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get product: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	return &p, nil
}

// Set caches product. A zero ttl disables caching.
func (c *ProductCache) Set(ctx context.Context, p *domain.Product) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if err := c.client.Set(ctx, productKeyPrefix+p.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}
