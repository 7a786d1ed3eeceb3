package controllers

import (
	"net/http"

	"github.com/angelmondragon/obohub-backend/api/middleware"
	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// containerFor fetches the shopper's container or writes a 401.
func containerFor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*shop.Container, bool) {
	c := middleware.ContainerFromContext(r.Context())
	if c == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to continue"))
		return nil, false
	}
	return c, true
}
