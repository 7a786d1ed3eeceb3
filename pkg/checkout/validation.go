package checkout

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
)

// DefaultStock caps quantities for products that do not publish a stock level.
const DefaultStock = 10

const (
	ReasonOutOfStock   = "out_of_stock"
	ReasonExceedsStock = "exceeds_stock"
)

// AvailabilityInput describes the data required to check a line against stock.
type AvailabilityInput struct {
	ProductID   string
	ProductName string
	InStock     bool
	Stock       *int
	Quantity    int
}

// AvailabilityViolation exposes the data returned to callers when a check fails.
type AvailabilityViolation struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	Reason       string `json:"reason"`
	AvailableQty int    `json:"available_qty"`
	RequestedQty int    `json:"requested_qty"`
}

// ValidateAvailability ensures every line is in stock and within the published stock level.
func ValidateAvailability(items []AvailabilityInput) error {
	var violations []AvailabilityViolation
	for _, item := range items {
		available := DefaultStock
		if item.Stock != nil && *item.Stock > 0 {
			available = *item.Stock
		}
		switch {
		case !item.InStock:
			violations = append(violations, AvailabilityViolation{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Reason:       ReasonOutOfStock,
				RequestedQty: item.Quantity,
			})
		case item.Quantity > available:
			violations = append(violations, AvailabilityViolation{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Reason:       ReasonExceedsStock,
				AvailableQty: available,
				RequestedQty: item.Quantity,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%d item(s) are not available in the requested quantity", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
