package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	pkgcheckout "github.com/angelmondragon/obohub-backend/pkg/checkout"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

type cartResponse struct {
	Items        []shop.CartLine `json:"items"`
	TotalItems   int             `json:"total_items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
	AppliedPromo *shop.PromoCode `json:"applied_promo,omitempty"`
}

func buildCartResponse(c *shop.Container) cartResponse {
	items := c.Cart()
	subtotal := decimal.Zero
	for _, line := range items {
		subtotal = subtotal.Add(line.Subtotal())
	}
	resp := cartResponse{
		Items:      items,
		TotalItems: c.TotalItems(),
		Subtotal:   subtotal,
		Total:      c.TotalPrice(),
	}
	if promo, ok := c.AppliedPromo(); ok {
		resp.AppliedPromo = &promo
	}
	return resp
}

type cartLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0,max=99"`
}

// CartGet returns the cart with its promo-adjusted total.
func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, buildCartResponse(c))
	}
}

// CartAddItem merges a catalog product into the cart after checking the
// variant and stock.
func CartAddItem(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload cartLineRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		product, err := lookupVariant(cat, payload.ProductID, payload.Size, payload.Color)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requested := payload.Quantity
		if line, exists := c.CartLine(product.ID, payload.Size, payload.Color); exists {
			requested += line.Quantity
		}
		if err := pkgcheckout.ValidateAvailability([]pkgcheckout.AvailabilityInput{availabilityOf(product, requested)}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := c.AddToCart(r.Context(), product, payload.Size, payload.Color, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildCartResponse(c))
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload cartLineRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, exists := c.CartLine(payload.ProductID, payload.Size, payload.Color)
		if !exists {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found"))
			return
		}
		if payload.Quantity > 0 {
			if err := pkgcheckout.ValidateAvailability([]pkgcheckout.AvailabilityInput{availabilityOf(line.Product, payload.Quantity)}); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := c.UpdateCartQuantity(r.Context(), payload.ProductID, payload.Size, payload.Color, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildCartResponse(c))
	}
}

// CartRemoveItem deletes the (product, size, color) line named by the path
// and query. Missing lines are ignored.
func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		size := strings.TrimSpace(r.URL.Query().Get("size"))
		color := strings.TrimSpace(r.URL.Query().Get("color"))
		if productID == "" || size == "" || color == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product, size and color are required"))
			return
		}
		if err := c.RemoveFromCart(r.Context(), productID, size, color); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildCartResponse(c))
	}
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		if err := c.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildCartResponse(c))
	}
}

func lookupVariant(cat *catalog.Catalog, productID, size, color string) (catalog.Product, error) {
	product, ok := cat.Find(strings.TrimSpace(productID))
	if !ok {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.HasSize(size) {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "size is not offered for this product").WithDetails(map[string]any{"sizes": product.Sizes})
	}
	if !product.HasColor(color) {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "color is not offered for this product").WithDetails(map[string]any{"colors": product.Colors})
	}
	return product, nil
}

func availabilityOf(p catalog.Product, quantity int) pkgcheckout.AvailabilityInput {
	return pkgcheckout.AvailabilityInput{
		ProductID:   p.ID,
		ProductName: p.Name,
		InStock:     p.InStock,
		Stock:       p.Stock,
		Quantity:    quantity,
	}
}
