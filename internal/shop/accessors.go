package shop

import (
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/shopspring/decimal"
)

// UserID returns the signed-in user's id, or "" when signed out.
func (c *Container) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.userID()
}

// User returns a copy of the profile.
func (c *Container) User() (UserProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.user == nil {
		return UserProfile{}, false
	}
	u := *c.st.user
	u.Addresses = orEmpty(cloneSlice(u.Addresses))
	return u, true
}

func (c *Container) Cart() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return orEmpty(cloneSlice(c.st.cart))
}

func (c *Container) Wishlist() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return orEmpty(cloneSlice(c.st.wishlist))
}

func (c *Container) Orders() []Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return orEmpty(cloneSlice(c.st.orders))
}

func (c *Container) Returns() []ReturnRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return orEmpty(cloneSlice(c.st.returns))
}

func (c *Container) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return orEmpty(cloneSlice(c.st.notifications))
}

// PromoCodes lists the codes the shopper may apply.
func (c *Container) PromoCodes() []PromoCode {
	return cloneSlice(c.promos)
}

// AppliedPromo returns the promo in effect for this session.
func (c *Container) AppliedPromo() (PromoCode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.promo == nil {
		return PromoCode{}, false
	}
	return *c.st.promo, true
}

// TotalPrice sums price times quantity over the cart, then applies the promo.
func (c *Container) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.totalPrice()
}

// TotalItems sums cart quantities.
func (c *Container) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, line := range c.st.cart {
		total += line.Quantity
	}
	return total
}

func (s snapshot) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.cart {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (s snapshot) totalPrice() decimal.Decimal {
	total := s.subtotal()
	if s.promo != nil {
		total = s.promo.Apply(total)
	}
	return total
}
