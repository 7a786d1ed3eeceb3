// Package checkout prices a cart for display before an order is placed.
// Placed orders keep the promo-adjusted cart total; shipping, tax and COD
// charges are informational.
package checkout

import (
	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Pricing holds the storefront's display pricing rules.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
	CODFee                decimal.Decimal
	CODLimit              decimal.Decimal
}

// PricingFromConfig copies the configured rules.
func PricingFromConfig(cfg config.CheckoutConfig) Pricing {
	return Pricing{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
		TaxRate:               cfg.TaxRate,
		CODFee:                cfg.CODFee,
		CODLimit:              cfg.CODLimit,
	}
}

// Quote is the order summary shown at checkout.
type Quote struct {
	Subtotal             decimal.Decimal     `json:"subtotal"`
	Shipping             decimal.Decimal     `json:"shipping"`
	FreeShipping         bool                `json:"free_shipping"`
	AmountToFreeShipping decimal.Decimal     `json:"amount_to_free_shipping"`
	Tax                  decimal.Decimal     `json:"tax"`
	CODFee               decimal.Decimal     `json:"cod_fee"`
	CODAvailable         bool                `json:"cod_available"`
	Total                decimal.Decimal     `json:"total"`
	PaymentMethod        enums.PaymentMethod `json:"payment_method,omitempty"`
}

// Quote prices subtotal, which is already promo-adjusted. An empty method
// quotes without COD charges.
func (p Pricing) Quote(subtotal decimal.Decimal, method enums.PaymentMethod) Quote {
	q := Quote{
		Subtotal:             subtotal.Round(2),
		Shipping:             decimal.Zero,
		AmountToFreeShipping: decimal.Zero,
		CODFee:               decimal.Zero,
		PaymentMethod:        method,
		CODAvailable:         subtotal.LessThan(p.CODLimit),
	}

	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		q.FreeShipping = true
	} else {
		q.Shipping = p.ShippingFee
		q.AmountToFreeShipping = p.FreeShippingThreshold.Sub(subtotal).Round(2)
	}

	q.Tax = subtotal.Mul(p.TaxRate).Round(2)
	if method == enums.PaymentMethodCOD {
		q.CODFee = p.CODFee
	}
	q.Total = subtotal.Add(q.Shipping).Add(q.Tax).Add(q.CODFee).Round(2)
	return q
}

// CheckPaymentMethod rejects unknown methods and COD above the limit.
func (p Pricing) CheckPaymentMethod(subtotal decimal.Decimal, method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").WithDetails(map[string]any{"payment_method": method})
	}
	if method == enums.PaymentMethodCOD && !subtotal.LessThan(p.CODLimit) {
		return pkgerrors.New(pkgerrors.CodeValidation, "cash on delivery is only available below the order limit").WithDetails(map[string]any{
			"limit": p.CODLimit.StringFixed(2),
		})
	}
	return nil
}

// PaymentOption is one selectable method at checkout.
type PaymentOption struct {
	Method    enums.PaymentMethod `json:"id"`
	Label     string              `json:"label"`
	Available bool                `json:"available"`
	Fee       decimal.Decimal     `json:"fee"`
}

// PaymentOptions lists every method for a cart worth subtotal. COD is
// listed but unavailable at or above the COD limit.
func (p Pricing) PaymentOptions(subtotal decimal.Decimal) []PaymentOption {
	options := make([]PaymentOption, 0, len(enums.PaymentMethods))
	for _, method := range enums.PaymentMethods {
		option := PaymentOption{Method: method, Label: method.Label(), Available: true, Fee: decimal.Zero}
		if method == enums.PaymentMethodCOD {
			option.Fee = p.CODFee
			option.Available = subtotal.LessThan(p.CODLimit)
		}
		options = append(options, option)
	}
	return options
}
