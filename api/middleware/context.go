package middleware

import (
	"context"

	"github.com/angelmondragon/obohub-backend/internal/shop"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxContainer contextKey = "shop_container"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// ContainerFromContext returns the shopper's state container seeded by Shop.
func ContainerFromContext(ctx context.Context) *shop.Container {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxContainer).(*shop.Container); ok {
		return v
	}
	return nil
}

// WithContainer injects the shopper's container for downstream handlers.
func WithContainer(ctx context.Context, c *shop.Container) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxContainer, c)
}
