package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/internal/identity"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// SessionProvider hands out the state container for a signed-in shopper.
type SessionProvider interface {
	Session(ctx context.Context, state identity.State) (*shop.Container, error)
}

// Shop loads the authenticated shopper's container. It must run after Auth.
func Shop(sessions SessionProvider, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := identity.StateFromContext(r.Context())
			container, err := sessions.Session(r.Context(), state)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithContainer(r.Context(), container)))
		})
	}
}
