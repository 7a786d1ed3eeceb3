package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// DefaultMaxPrice is the upper bound of the price slider.
var DefaultMaxPrice = decimal.NewFromInt(500)

// Filter narrows and orders a listing. Zero values mean "no constraint",
// except the price range which defaults to 0..DefaultMaxPrice.
type Filter struct {
	Category   string
	OnSale     bool
	Search     string
	Categories []string
	Sizes      []string
	Colors     []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       enums.SortOption
}

// List applies f and returns matching products.
func (c *Catalog) List(f Filter) []Product {
	minPrice := decimal.Zero
	if f.MinPrice != nil {
		minPrice = *f.MinPrice
	}
	maxPrice := DefaultMaxPrice
	if f.MaxPrice != nil {
		maxPrice = *f.MaxPrice
	}
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.OnSale && !p.OnSale() {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
			continue
		}
		if len(f.Sizes) > 0 && !overlaps(p.Sizes, f.Sizes) {
			continue
		}
		if len(f.Colors) > 0 && !overlaps(p.Colors, f.Colors) {
			continue
		}
		if p.Price.LessThan(minPrice) || p.Price.GreaterThan(maxPrice) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case enums.SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case enums.SortPopular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Reviews > out[j].Reviews })
	}
	// featured and newest keep catalog order
	return out
}

func matchesQuery(p Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Brand), query)
}

func overlaps(have, want []string) bool {
	for _, h := range have {
		if contains(want, h) {
			return true
		}
	}
	return false
}
