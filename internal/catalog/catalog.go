// Package catalog serves the read-only product list the storefront browses.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//go:embed products.json
var productsJSON []byte

const (
	saleHighlights = 4
	newArrivals    = 8
)

// Catalog is an in-memory, ordered product list. Order is the merchandising
// order, newest first.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// Highlights groups the products featured on the landing page.
type Highlights struct {
	Sale        []Product `json:"sale"`
	NewArrivals []Product `json:"new_arrivals"`
}

// Load parses and validates the embedded product list.
func Load() (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("decoding embedded catalog: %w", err)
	}
	return New(products)
}

// New validates products and builds a catalog over them.
func New(products []Product) (*Catalog, error) {
	v := newValidator()
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if err := v.Struct(p); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("product %q: price must be positive", p.ID)
		}
		if p.OriginalPrice != nil && p.OriginalPrice.LessThanOrEqual(p.Price) {
			return nil, fmt.Errorf("product %q: original_price must exceed price", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		byID[p.ID] = i
	}
	return &Catalog{products: products, byID: byID}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Find returns the product with id.
func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Highlights returns the first sale items and the newest arrivals.
func (c *Catalog) Highlights() Highlights {
	h := Highlights{Sale: []Product{}, NewArrivals: []Product{}}
	for _, p := range c.products {
		if p.OnSale() && len(h.Sale) < saleHighlights {
			h.Sale = append(h.Sale, p)
		}
		if len(h.NewArrivals) < newArrivals {
			h.NewArrivals = append(h.NewArrivals, p)
		}
	}
	return h
}
