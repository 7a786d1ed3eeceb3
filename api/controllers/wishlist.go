package controllers

import (
	"net/http"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

type toggleWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

func WishlistGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": c.Wishlist()})
	}
}

// WishlistToggle adds or removes a catalog product.
func WishlistToggle(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload toggleWishlistRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, found := cat.Find(payload.ProductID)
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		added, err := c.ToggleWishlist(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"product_id":  product.ID,
			"in_wishlist": added,
			"items":       c.Wishlist(),
		})
	}
}
