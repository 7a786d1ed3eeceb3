package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is an immutable catalog entry. Cart lines and orders embed a
// snapshot of it.
type Product struct {
	ID            string           `json:"id" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Image         string           `json:"image" validate:"required,url"`
	Images        []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
	Category      string           `json:"category" validate:"required"`
	Subcategory   string           `json:"subcategory,omitempty"`
	Description   string           `json:"description" validate:"required"`
	Sizes         []string         `json:"sizes" validate:"required,min=1,dive,required"`
	Colors        []string         `json:"colors" validate:"required,min=1,dive,required"`
	InStock       bool             `json:"in_stock"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Rating        float64          `json:"rating" validate:"gte=0,lte=5"`
	Reviews       int              `json:"reviews" validate:"gte=0"`
	Brand         string           `json:"brand" validate:"required"`
}

// OnSale reports whether the product carries a struck-through original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil
}

// HasSize reports whether size is offered.
func (p Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

// HasColor reports whether color is offered.
func (p Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
