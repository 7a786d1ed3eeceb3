package controllers

import (
	"net/http"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

type applyPromoRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

// PromoList returns the promo catalog and the applied code, if any.
func PromoList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		body := map[string]any{"codes": c.PromoCodes()}
		if promo, applied := c.AppliedPromo(); applied {
			body["applied"] = promo
		}
		responses.WriteSuccess(w, body)
	}
}

// PromoApply applies a code to the session's cart. Unknown codes are rejected
// and leave the current promo untouched.
func PromoApply(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload applyPromoRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !c.ApplyPromoCode(r.Context(), payload.Code) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid promo code").WithDetails(map[string]any{"code": payload.Code}))
			return
		}
		responses.WriteSuccess(w, buildCartResponse(c))
	}
}

func PromoRemove(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		c.RemovePromoCode(r.Context())
		responses.WriteSuccess(w, buildCartResponse(c))
	}
}
