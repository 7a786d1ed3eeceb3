package shop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/internal/identity"
	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

// flakyStore wraps a memory store and fails writes on demand.
type flakyStore struct {
	*kvstore.Memory
	mu         sync.Mutex
	failWrites bool
	failReads  bool
	writes     int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: kvstore.NewMemory()}
}

func (f *flakyStore) setFailWrites(v bool) {
	f.mu.Lock()
	f.failWrites = v
	f.mu.Unlock()
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return "", false, errStoreDown
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyStore) SetMany(ctx context.Context, entries map[string]string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.writes++
	f.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return f.Memory.SetMany(ctx, entries)
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newContainer(t *testing.T, store kvstore.Store) *Container {
	t.Helper()
	c, err := New(Options{Store: store, Clock: fixedClock()})
	require.NoError(t, err)
	return c
}

func signIn(t *testing.T, c *Container, userID string) {
	t.Helper()
	state := identity.SignedIn(identity.Profile{ID: userID, Email: userID + "@example.com", Name: "Shopper " + userID})
	require.NoError(t, c.SyncIdentity(context.Background(), state))
}

func product(id string, price int64) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.NewFromInt(price),
		Category: "Women",
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Black", "White"},
		InStock:  true,
		Brand:    "OBO",
	}
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(t, want).Equal(got), "want %s, got %s", want, got)
}
