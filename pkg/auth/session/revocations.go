package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	redisclient "github.com/angelmondragon/obohub-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

const revokedMarker = "1"

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type revocationKeyer interface {
	RevokedTokenKey(tokenID string) string
}

// Revocations remembers signed-out token ids until the tokens would have
// expired anyway.
type Revocations struct {
	store revocationStore
	keyer revocationKeyer
	now   func() time.Time
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewRedisRevocations shares revocations across API replicas through Redis.
func NewRedisRevocations(client *redisclient.Client) (*Revocations, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Revocations{store: client, keyer: client, now: time.Now}, nil
}

// NewMemoryRevocations keeps revocations in process, for single-node dev runs.
func NewMemoryRevocations() *Revocations {
	mem := &memoryStore{entries: map[string]time.Time{}, now: time.Now}
	return &Revocations{store: mem, keyer: mem, now: time.Now}
}

// Revoke marks tokenID as signed out until expiresAt.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, r.keyer.RevokedTokenKey(tokenID), revokedMarker, ttl)
}

// IsRevoked reports whether tokenID was signed out.
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, nil
	}
	if _, err := r.store.Get(ctx, r.keyer.RevokedTokenKey(tokenID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func (m *memoryStore) RevokedTokenKey(tokenID string) string {
	return "revoked:" + tokenID
}

func (m *memoryStore) Set(_ context.Context, key string, _ any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.now().Add(ttl)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.entries[key]
	if !ok {
		return "", redislib.Nil
	}
	if !m.now().Before(until) {
		delete(m.entries, key)
		return "", redislib.Nil
	}
	return revokedMarker, nil
}
