package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	"github.com/angelmondragon/obohub-backend/pkg/pagination"
)

type orderListResponse struct {
	Orders     []shop.Order `json:"orders"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func orderCursor(o shop.Order) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.Date, ID: o.ID}
}

// OrdersList pages through the order history, newest first.
func OrdersList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, next, err := pagination.Page(c.Orders(), params, orderCursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		responses.WriteSuccess(w, orderListResponse{Orders: page, NextCursor: next})
	}
}

func OrdersGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		order, found := c.GetOrder(strings.TrimSpace(chi.URLParam(r, "orderID")))
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type advanceOrderRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

// OrdersAdvance simulates carrier progress. Mounted outside production only.
func OrdersAdvance(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload advanceOrderRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}
		order, err := c.AdvanceOrder(r.Context(), strings.TrimSpace(chi.URLParam(r, "orderID")), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
