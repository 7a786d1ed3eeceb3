package kvstore

import (
	"context"
	"time"

	"github.com/angelmondragon/obohub-backend/pkg/redis"
)

// documentClient is the slice of the redis client the store relies on.
type documentClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	MSet(ctx context.Context, pairs map[string]string) error
	DocumentKey(key string) string
	Ping(ctx context.Context) error
}

// Redis keeps documents as plain strings without expiry.
type Redis struct {
	client documentClient
}

// NewRedis wires the store onto a redis client.
func NewRedis(client documentClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.client.DocumentKey(key))
	if redis.IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := validateKeys(map[string]string{key: value}); err != nil {
		return err
	}
	return r.client.Set(ctx, r.client.DocumentKey(key), value, 0)
}

// SetMany relies on MSET being atomic.
func (r *Redis) SetMany(ctx context.Context, entries map[string]string) error {
	if err := validateKeys(entries); err != nil {
		return err
	}
	namespaced := make(map[string]string, len(entries))
	for key, value := range entries {
		namespaced[r.client.DocumentKey(key)] = value
	}
	return r.client.MSet(ctx, namespaced)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
