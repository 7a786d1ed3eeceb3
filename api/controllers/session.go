package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/obohub-backend/api/middleware"
	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// SessionEnder drops a shopper's session.
type SessionEnder interface {
	End(ctx context.Context, userID string) error
}

type sessionResponse struct {
	User          shop.UserProfile `json:"user"`
	CartItems     int              `json:"cart_items"`
	WishlistItems int              `json:"wishlist_items"`
	Unread        int              `json:"unread_notifications"`
}

// SessionGet summarises the signed-in shopper for the app header.
func SessionGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		user, _ := c.User()
		responses.WriteSuccess(w, sessionResponse{
			User:          user,
			CartItems:     c.TotalItems(),
			WishlistItems: len(c.Wishlist()),
			Unread:        c.UnreadCount(),
		})
	}
}

// SessionLogout ends the session and revokes the presented token.
func SessionLogout(sessions SessionEnder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if err := sessions.End(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(r.Context(), "session.logout")
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
