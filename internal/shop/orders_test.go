package shop

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutScenario(t *testing.T) {
	store := kvstore.NewMemory()
	c := newContainer(t, store)
	signIn(t, c, "u1")
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, product("1", 20), "M", "Black", 2))
	requireDecimal(t, "40", c.TotalPrice())
	require.True(t, c.ApplyPromoCode(ctx, "SAVE20"))
	requireDecimal(t, "32", c.TotalPrice())

	addr := Address{ID: "a1", FullName: "Ada", Street: "1 Main St", City: "Springfield"}
	order, err := c.CreateOrder(ctx, enums.PaymentMethodCard, addr)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.ID, "ORD"))
	assert.True(t, strings.HasPrefix(order.TrackingNumber, "TRK"))
	assert.Len(t, order.TrackingNumber, 11)
	requireDecimal(t, "32", order.Total)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "a1", order.DeliveryAddress.ID)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.EstimatedDelivery)
	assert.Equal(t, order.Date.AddDate(0, 0, 5), *order.EstimatedDelivery)

	require.Len(t, order.Timeline, 5)
	assert.Equal(t, "Order Placed", order.Timeline[0].Status)
	assert.True(t, order.Timeline[0].Completed)
	assert.True(t, order.Timeline[1].Completed)
	assert.NotNil(t, order.Timeline[1].Date)
	assert.False(t, order.Timeline[2].Completed)
	assert.Nil(t, order.Timeline[2].Date)

	assert.Empty(t, c.Cart())
	_, applied := c.AppliedPromo()
	assert.False(t, applied)
	requireDecimal(t, "0", c.TotalPrice())

	notes := c.Notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, "Order Placed Successfully!", notes[0].Title)
	assert.Contains(t, notes[0].Message, order.ID)
	assert.Equal(t, enums.NotificationTypeOrder, notes[0].Type)

	got, ok := c.GetOrder(order.ID)
	require.True(t, ok)
	assert.Equal(t, order.ID, got.ID)

	var stored []Order
	found, err := kvstore.Load(ctx, store, kvstore.Key(kvstore.KindOrders, "u1"), &stored)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored, 1)
	requireDecimal(t, "32", stored[0].Total)
}

func TestOrderTotalIsFrozen(t *testing.T) {
	c := newContainer(t, kvstore.NewMemory())
	signIn(t, c, "u1")
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, product("1", 20), "M", "Black", 1))
	order, err := c.CreateOrder(ctx, enums.PaymentMethodCOD, Address{ID: "a1"})
	require.NoError(t, err)

	require.NoError(t, c.AddToCart(ctx, product("2", 99), "M", "Black", 1))
	got, _ := c.GetOrder(order.ID)
	requireDecimal(t, "20", got.Total)
}

func TestOrdersAreNewestFirstWithUniqueIDs(t *testing.T) {
	c := newContainer(t, kvstore.NewMemory())
	signIn(t, c, "u1")
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		require.NoError(t, c.AddToCart(ctx, product("1", 20), "M", "Black", 1))
		order, err := c.CreateOrder(ctx, enums.PaymentMethodCard, Address{})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	orders := c.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, ids[2], orders[0].ID)
	assert.Equal(t, ids[0], orders[2].ID)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	store := newFlakyStore()
	c := newContainer(t, store)
	signIn(t, c, "u1")
	writes := store.writes

	_, err := c.CreateOrder(context.Background(), enums.PaymentMethodCard, Address{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, c.Orders())
	assert.Equal(t, writes, store.writes)
}

func TestAdvanceOrder(t *testing.T) {
	c := newContainer(t, kvstore.NewMemory())
	signIn(t, c, "u1")
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, product("1", 20), "M", "Black", 1))
	order, err := c.CreateOrder(ctx, enums.PaymentMethodCard, Address{})
	require.NoError(t, err)

	_, err = c.AdvanceOrder(ctx, "missing", enums.OrderStatusShipped)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = c.AdvanceOrder(ctx, order.ID, enums.OrderStatusPending)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	delivered, err := c.AdvanceOrder(ctx, order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)
	for _, entry := range delivered.Timeline {
		assert.True(t, entry.Completed, entry.Status)
		assert.NotNil(t, entry.Date, entry.Status)
	}
	notes := c.Notifications()
	assert.Equal(t, "Order Delivered", notes[0].Title)
	assert.Equal(t, enums.NotificationTypeDelivery, notes[0].Type)

	_, err = c.AdvanceOrder(ctx, order.ID, enums.OrderStatusCancelled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelOnlyChangesStatus(t *testing.T) {
	c := newContainer(t, kvstore.NewMemory())
	signIn(t, c, "u1")
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, product("1", 20), "M", "Black", 1))
	order, err := c.CreateOrder(ctx, enums.PaymentMethodCard, Address{})
	require.NoError(t, err)
	before := len(c.Notifications())

	cancelled, err := c.AdvanceOrder(ctx, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Timeline[2].Completed)
	assert.Len(t, c.Notifications(), before)
}
