package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/internal/identity"
	pkgAuth "github.com/angelmondragon/obohub-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// Authenticator turns a bearer token into an identity state.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.State, *pkgAuth.IdentityClaims, error)
}

// Auth validates a bearer token and seeds the request context with the identity.
func Auth(authenticator Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			state, claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := identity.WithState(r.Context(), state, claims)
			ctx = WithUserID(ctx, state.UserID())
			if logg != nil {
				ctx = logg.WithUserID(ctx, state.UserID())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
