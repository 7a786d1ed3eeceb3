package enums

// PromoType decides how a promo discount is applied to the cart total.
type PromoType string

const (
	PromoTypePercentage PromoType = "percentage"
	PromoTypeFixed      PromoType = "fixed"
)

// IsValid reports whether the value is a known PromoType.
func (p PromoType) IsValid() bool {
	return p == PromoTypePercentage || p == PromoTypeFixed
}
