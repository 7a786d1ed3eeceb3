package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract checks the behaviour every backend must share.
func runContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, ok, err := store.Get(ctx, "cart_nobody")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("set then overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart_u1", `[{"quantity":1}]`))
		require.NoError(t, store.Set(ctx, "cart_u1", `[]`))

		value, ok, err := store.Get(ctx, "cart_u1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[]`, value)
	})

	t.Run("set many", func(t *testing.T) {
		require.NoError(t, store.SetMany(ctx, map[string]string{
			"orders_u1":        `[{"id":"ORD1"}]`,
			"notifications_u1": `[]`,
		}))
		for key, want := range map[string]string{"orders_u1": `[{"id":"ORD1"}]`, "notifications_u1": `[]`} {
			value, ok, err := store.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, ok, key)
			assert.Equal(t, want, value)
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		require.Error(t, store.SetMany(ctx, map[string]string{"": "x"}))
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})
}
