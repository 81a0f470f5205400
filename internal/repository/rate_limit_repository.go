package repository

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository implements a fixed-window counter in redis. Keys are
// hashed so raw client addresses never land in the store.
type RateLimitRepository interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateLimitRepository struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) RateLimitRepository {
	return &rateLimitRepository{client: client}
}

func (r *rateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	hashed := fmt.Sprintf("ratelimit:%x", hasher.Sum(nil))

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	count, err := r.client.Incr(ctx, hashed).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit in the window owns the expiry.
		if err := r.client.Expire(ctx, hashed, window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}
