package shop

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/angelmondragon/obohub-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySessions(t *testing.T) {
	signOut := &recordingSignOuter{}
	reg, err := NewRegistry(Options{Store: kvstore.NewMemory(), Clock: fixedClock(), SignOut: signOut})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = reg.Session(ctx, identity.SignedOut())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	alice := identity.SignedIn(identity.Profile{ID: "alice"})
	c1, err := reg.Session(ctx, alice)
	require.NoError(t, err)
	c2, err := reg.Session(ctx, alice)
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	bob, err := reg.Session(ctx, identity.SignedIn(identity.Profile{ID: "bob"}))
	require.NoError(t, err)
	assert.NotSame(t, c1, bob)
	assert.Equal(t, 2, reg.Len())

	require.NoError(t, reg.End(ctx, "alice"))
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, signOut.calls)
	assert.Equal(t, "", c1.UserID())

	require.NoError(t, reg.End(ctx, "nobody"))
}

func TestRegistryDropsContainerWhenLoadFails(t *testing.T) {
	store := newFlakyStore()
	store.failReads = true
	reg, err := NewRegistry(Options{Store: store})
	require.NoError(t, err)

	_, err = reg.Session(context.Background(), identity.SignedIn(identity.Profile{ID: "u1"}))
	require.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestRegistryWiresListeners(t *testing.T) {
	var changes []Change
	reg, err := NewRegistry(Options{Store: kvstore.NewMemory()}, func(_ context.Context, c Change) {
		changes = append(changes, c)
	})
	require.NoError(t, err)

	_, err = reg.Session(context.Background(), identity.SignedIn(identity.Profile{ID: "u1"}))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, KindSession, changes[0].Kind)
}

func TestRegistryEvictsIdleContainers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := kvstore.NewMemory()
	reg, err := NewRegistry(Options{Store: store, Clock: clock, IdleTimeout: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	alice := identity.SignedIn(identity.Profile{ID: "alice"})
	first, err := reg.Session(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, first.AddToCart(ctx, product("1", 20), "M", "Black", 2))

	now = now.Add(30 * time.Second)
	_, err = reg.Session(ctx, identity.SignedIn(identity.Profile{ID: "bob"}))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len(), "alice is not idle yet")

	now = now.Add(45 * time.Second)
	_, err = reg.Session(ctx, identity.SignedIn(identity.Profile{ID: "carol"}))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len(), "alice was evicted, bob was kept")

	again, err := reg.Session(ctx, alice)
	require.NoError(t, err)
	assert.NotSame(t, first, again)
	cart := again.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Len(t, again.Notifications(), 1, "reload is not a first sign-in")
	assert.Equal(t, "alice", first.UserID(), "evicted container is left intact")
}

func TestRegistrySweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	reg, err := NewRegistry(Options{Store: kvstore.NewMemory(), Clock: clock, IdleTimeout: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := reg.Session(ctx, identity.SignedIn(identity.Profile{ID: id}))
		require.NoError(t, err)
	}
	assert.Zero(t, reg.Sweep(ctx))

	now = now.Add(2 * time.Minute)
	_, err = reg.Session(ctx, identity.SignedIn(identity.Profile{ID: "u2"}))
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len(), "u2's own request evicts the others")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(ctx))
	assert.Zero(t, reg.Len())
}

func TestRegistryBoundedUnderManySignIns(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	reg, err := NewRegistry(Options{Store: kvstore.NewMemory(), Clock: clock, IdleTimeout: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		now = now.Add(10 * time.Second)
		_, err := reg.Session(ctx, identity.SignedIn(identity.Profile{ID: "user-" + strconv.Itoa(i)}))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, reg.Len(), 7)
}
