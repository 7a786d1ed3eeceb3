package shop

import (
	"context"

	"github.com/angelmondragon/obohub-backend/internal/catalog"
)

// AddToCart merges quantity into the (product, size, color) line or appends
// a new line.
func (c *Container) AddToCart(ctx context.Context, product catalog.Product, size, color string, quantity int) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		for i, line := range next.cart {
			if line.matches(product.ID, size, color) {
				next.cart[i].Quantity += quantity
				return []Kind{KindCart}, nil
			}
		}
		next.cart = append(next.cart, CartLine{Product: product, Size: size, Color: color, Quantity: quantity})
		return []Kind{KindCart}, nil
	})
}

// RemoveFromCart deletes the matching line; a missing line is a no-op.
func (c *Container) RemoveFromCart(ctx context.Context, productID, size, color string) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		return removeLine(next, productID, size, color), nil
	})
}

// UpdateCartQuantity sets the line's quantity exactly. Zero or less removes it.
func (c *Container) UpdateCartQuantity(ctx context.Context, productID, size, color string, quantity int) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		if quantity <= 0 {
			return removeLine(next, productID, size, color), nil
		}
		for i, line := range next.cart {
			if line.matches(productID, size, color) {
				next.cart[i].Quantity = quantity
				return []Kind{KindCart}, nil
			}
		}
		return nil, nil
	})
}

// ClearCart empties the cart.
func (c *Container) ClearCart(ctx context.Context) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		next.cart = []CartLine{}
		return []Kind{KindCart}, nil
	})
}

// CartLine returns the line for (productID, size, color).
func (c *Container) CartLine(productID, size, color string) (CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.st.cart {
		if line.matches(productID, size, color) {
			return line, true
		}
	}
	return CartLine{}, false
}

func removeLine(next *snapshot, productID, size, color string) []Kind {
	kept := next.cart[:0]
	removed := false
	for _, line := range next.cart {
		if line.matches(productID, size, color) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil
	}
	next.cart = kept
	return []Kind{KindCart}
}

// ToggleWishlist removes the product if present, else appends it. It reports
// whether the product is now in the wishlist.
func (c *Container) ToggleWishlist(ctx context.Context, product catalog.Product) (bool, error) {
	var added bool
	err := c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		for i, p := range next.wishlist {
			if p.ID == product.ID {
				next.wishlist = append(next.wishlist[:i], next.wishlist[i+1:]...)
				added = false
				return []Kind{KindWishlist}, nil
			}
		}
		next.wishlist = append(next.wishlist, product)
		added = true
		return []Kind{KindWishlist}, nil
	})
	return added, err
}

// IsInWishlist reports wishlist membership by product id.
func (c *Container) IsInWishlist(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.st.wishlist {
		if p.ID == productID {
			return true
		}
	}
	return false
}
