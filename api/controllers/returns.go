package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

type createReturnRequest struct {
	OrderID     string `json:"order_id" validate:"required,max=64"`
	ItemIndices []int  `json:"item_indices" validate:"required,min=1,dive,min=0"`
	Reason      string `json:"reason" validate:"required,max=120"`
	OtherReason string `json:"other_reason" validate:"omitempty,max=500"`
}

// ReturnsList returns requests filtered by ?status=active|history; without
// a filter every request is returned.
func ReturnsList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var items []shop.ReturnRequest
		switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))) {
		case "":
			items = c.Returns()
		case "active":
			items = c.ActiveReturns()
		case "history":
			items = c.ReturnHistory()
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status must be active or history"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"returns": items})
	}
}

// ReturnsCreate files a return for the selected lines of an order.
func ReturnsCreate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload createReturnRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := shop.ResolveReason(payload.Reason, validators.SanitizeString(payload.OtherReason, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := c.CreateReturnRequestByIndex(r.Context(), strings.TrimSpace(payload.OrderID), payload.ItemIndices, reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, req)
	}
}

func ReturnsReasons() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"reasons": shop.ReturnReasons()})
	}
}

// ReturnsEligibleOrders lists delivered orders.
func ReturnsEligibleOrders(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": c.ReturnableOrders()})
	}
}
