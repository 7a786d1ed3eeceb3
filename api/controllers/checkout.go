package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/checkout"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	pkgcheckout "github.com/angelmondragon/obohub-backend/pkg/checkout"
	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,payment_method"`
	AddressID     string `json:"address_id" validate:"omitempty,max=64"`
}

// CheckoutQuote prices the current cart. payment_method is optional.
func CheckoutQuote(pricing checkout.Pricing, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var method enums.PaymentMethod
		if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
			parsed, err := enums.ParsePaymentMethod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method"))
				return
			}
			method = parsed
		}
		responses.WriteSuccess(w, pricing.Quote(c.TotalPrice(), method))
	}
}

type paymentMethodsResponse struct {
	Methods  []checkout.PaymentOption `json:"methods"`
	CODLimit string                   `json:"cod_limit"`
}

// CheckoutPaymentMethods lists the payment methods with COD availability
// for the current cart.
func CheckoutPaymentMethods(pricing checkout.Pricing, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, paymentMethodsResponse{
			Methods:  pricing.PaymentOptions(c.TotalPrice()),
			CODLimit: pricing.CODLimit.String(),
		})
	}
}

type checkoutResponse struct {
	Order shop.Order     `json:"order"`
	Quote checkout.Quote `json:"quote"`
}

// CheckoutPlaceOrder turns the cart into an order delivered to the chosen
// address, or the default one when none is given.
func CheckoutPlaceOrder(pricing checkout.Pricing, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := c.Cart()
		if len(cart) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		address, err := deliveryAddress(profileOf(c), payload.AddressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, _ := enums.ParsePaymentMethod(payload.PaymentMethod)
		total := c.TotalPrice()
		if err := pricing.CheckPaymentMethod(total, method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]pkgcheckout.AvailabilityInput, 0, len(cart))
		for _, line := range cart {
			inputs = append(inputs, availabilityOf(line.Product, line.Quantity))
		}
		if err := pkgcheckout.ValidateAvailability(inputs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote := pricing.Quote(total, method)
		order, err := c.CreateOrder(r.Context(), method, address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"order_id": order.ID, "total": order.Total.StringFixed(2)})
			logg.Info(ctx, "checkout.order_placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{Order: order, Quote: quote})
	}
}

func deliveryAddress(user shop.UserProfile, id string) (shop.Address, error) {
	id = strings.TrimSpace(id)
	if id != "" {
		if address, ok := user.FindAddress(id); ok {
			return address, nil
		}
		return shop.Address{}, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if address, ok := user.DefaultAddress(); ok {
		return address, nil
	}
	return shop.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "add a delivery address before checkout")
}
