package shop

import (
	"context"
	"strings"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PromoCode discounts the cart total by a percentage or a fixed amount.
type PromoCode struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Type     enums.PromoType `json:"type"`
}

// DefaultPromoCodes is the storefront's fixed promo catalog.
func DefaultPromoCodes() []PromoCode {
	return []PromoCode{
		{Code: "WELCOME10", Discount: decimal.NewFromInt(10), Type: enums.PromoTypePercentage},
		{Code: "SAVE20", Discount: decimal.NewFromInt(20), Type: enums.PromoTypePercentage},
		{Code: "FLAT50", Discount: decimal.NewFromInt(50), Type: enums.PromoTypeFixed},
	}
}

var hundred = decimal.NewFromInt(100)

// Apply discounts total. Fixed discounts never push the total below zero.
func (p PromoCode) Apply(total decimal.Decimal) decimal.Decimal {
	switch p.Type {
	case enums.PromoTypePercentage:
		return total.Mul(decimal.NewFromInt(1).Sub(p.Discount.Div(hundred)))
	case enums.PromoTypeFixed:
		return decimal.Max(decimal.Zero, total.Sub(p.Discount))
	}
	return total
}

func findPromo(codes []PromoCode, code string) (PromoCode, bool) {
	code = strings.TrimSpace(code)
	for _, p := range codes {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return PromoCode{}, false
}

// ApplyPromoCode looks code up case-insensitively and makes it the applied
// promo. Unknown codes, or nobody signed in, leave the current promo in
// place. The applied promo lives for the session only.
func (c *Container) ApplyPromoCode(ctx context.Context, code string) bool {
	promo, ok := findPromo(c.promos, code)
	if !ok {
		return false
	}
	c.mu.Lock()
	if c.st.user == nil {
		c.mu.Unlock()
		return false
	}
	c.st.promo = &promo
	userID := c.st.userID()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	c.emit(ctx, listeners, userID, KindPromo)
	return true
}

// RemovePromoCode clears the applied promo.
func (c *Container) RemovePromoCode(ctx context.Context) {
	c.mu.Lock()
	if c.st.promo == nil {
		c.mu.Unlock()
		return
	}
	c.st.promo = nil
	userID := c.st.userID()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	c.emit(ctx, listeners, userID, KindPromo)
}
