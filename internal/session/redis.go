package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis persists cart session slots in Redis. A zero TTL keeps keys forever.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, TTL: ttl}
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("session: redis client not configured")
	}
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Put implements Store.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if r == nil || r.Client == nil {
		return errors.New("session: redis client not configured")
	}
	return r.Client.Set(ctx, key, value, r.TTL).Err()
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if r == nil || r.Client == nil {
		return errors.New("session: redis client not configured")
	}
	return r.Client.Del(ctx, key).Err()
}

// PingStore probes the underlying Redis connection for readiness checks.
func (r *Redis) PingStore(ctx context.Context, timeout time.Duration) error {
	if r == nil || r.Client == nil {
		return errors.New("session: redis client not configured")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Client.Ping(ctx).Err()
}
