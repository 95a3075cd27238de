package servecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis caches rendered playlist text in a shared Redis instance, so
// multiple loopcast replicas serving the same library (spec §5's
// "multiple processes can serve the same library in parallel") share
// one cache instead of each absorbing the full render cost.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis wraps an already-configured *redis.Client.
func NewRedis(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (r *Redis) Get(ctx context.Context, streamIdx int, second int64) (string, bool, error) {
	text, err := r.client.Get(ctx, r.keyPrefix+Key(streamIdx, second)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (r *Redis) Set(ctx context.Context, streamIdx int, second int64, text string, ttl time.Duration) error {
	return r.client.Set(ctx, r.keyPrefix+Key(streamIdx, second), text, ttl).Err()
}

// NewClient builds a *redis.Client from the address/password/db triple
// SPEC_FULL §11's CacheConfig carries.
func NewClient(address, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}
