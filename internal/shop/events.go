package shop

import (
	"context"

	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// Kind names the part of the shop state a Change touched.
type Kind string

const (
	KindCart          Kind = "cart"
	KindWishlist      Kind = "wishlist"
	KindOrders        Kind = "orders"
	KindReturns       Kind = "returns"
	KindNotifications Kind = "notifications"
	KindUser          Kind = "user"
	KindPromo         Kind = "promo"
	// KindSession fires when a user is loaded or cleared.
	KindSession Kind = "session"
	// KindLogout fires when the shopper asks to end the session.
	KindLogout Kind = "logout"
)

var storeKinds = map[Kind]kvstore.Kind{
	KindCart:          kvstore.KindCart,
	KindWishlist:      kvstore.KindWishlist,
	KindOrders:        kvstore.KindOrders,
	KindReturns:       kvstore.KindReturns,
	KindNotifications: kvstore.KindNotifications,
	KindUser:          kvstore.KindUser,
}

// Persisted reports whether the kind maps to a stored document.
func (k Kind) Persisted() bool {
	_, ok := storeKinds[k]
	return ok
}

// Change is delivered to listeners after the touched state is durable.
type Change struct {
	UserID string
	Kind   Kind
}

// Listener observes container changes. Listeners run synchronously on the
// mutating goroutine after the container lock is released.
type Listener func(ctx context.Context, change Change)

// LogListener records every change at info level.
func LogListener(logg *logger.Logger) Listener {
	return func(ctx context.Context, change Change) {
		if logg == nil {
			return
		}
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id": change.UserID,
			"kind":    string(change.Kind),
		})
		logg.Info(ctx, "shop.state.changed")
	}
}
