package shop

import (
	"time"

	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CartLine is one (product, size, color) entry in the cart.
type CartLine struct {
	Product  catalog.Product `json:"product"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Quantity int             `json:"quantity"`
}

func (l CartLine) matches(productID, size, color string) bool {
	return l.Product.ID == productID && l.Size == size && l.Color == color
}

// Subtotal is unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Address is a saved delivery address.
type Address struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

// AddressInput carries the fields of a new address.
type AddressInput struct {
	FullName  string `json:"full_name" validate:"required,max=120"`
	Street    string `json:"street" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	ZipCode   string `json:"zip_code" validate:"required,max=20"`
	Country   string `json:"country" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"required,max=30"`
	IsDefault bool   `json:"is_default"`
}

// AddressUpdate merges the non-nil fields into an existing address.
type AddressUpdate struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=120"`
	Street    *string `json:"street,omitempty" validate:"omitempty,min=1,max=200"`
	City      *string `json:"city,omitempty" validate:"omitempty,min=1,max=100"`
	State     *string `json:"state,omitempty" validate:"omitempty,min=1,max=100"`
	ZipCode   *string `json:"zip_code,omitempty" validate:"omitempty,min=1,max=20"`
	Country   *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=1,max=30"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

func (u AddressUpdate) apply(a Address) Address {
	if u.FullName != nil {
		a.FullName = *u.FullName
	}
	if u.Street != nil {
		a.Street = *u.Street
	}
	if u.City != nil {
		a.City = *u.City
	}
	if u.State != nil {
		a.State = *u.State
	}
	if u.ZipCode != nil {
		a.ZipCode = *u.ZipCode
	}
	if u.Country != nil {
		a.Country = *u.Country
	}
	if u.Phone != nil {
		a.Phone = *u.Phone
	}
	if u.IsDefault != nil {
		a.IsDefault = *u.IsDefault
	}
	return a
}

// UserProfile is the signed-in shopper and their address book.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Addresses []Address `json:"addresses"`
}

// DefaultAddress returns the address flagged as default, if any.
func (u UserProfile) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// FindAddress looks an address up by id.
func (u UserProfile) FindAddress(id string) (Address, bool) {
	for _, a := range u.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// UserUpdate merges the non-nil fields into the profile.
type UserUpdate struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// TimelineEntry is one delivery stage of an order.
type TimelineEntry struct {
	Status      string     `json:"status"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
}

// Order is an immutable checkout snapshot; only status and timeline progress.
type Order struct {
	ID                string              `json:"id"`
	Date              time.Time           `json:"date"`
	Items             []CartLine          `json:"items"`
	Total             decimal.Decimal     `json:"total"`
	Status            enums.OrderStatus   `json:"status"`
	TrackingNumber    string              `json:"tracking_number,omitempty"`
	DeliveryAddress   Address             `json:"delivery_address"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	Timeline          []TimelineEntry     `json:"timeline"`
}

// ReturnRequest asks for a refund of some of an order's lines.
type ReturnRequest struct {
	ID           string             `json:"id"`
	OrderID      string             `json:"order_id"`
	Items        []CartLine         `json:"items"`
	Reason       string             `json:"reason"`
	Status       enums.ReturnStatus `json:"status"`
	Date         time.Time          `json:"date"`
	RefundAmount decimal.Decimal    `json:"refund_amount"`
}

// Notification is an in-app message, newest first in the feed.
type Notification struct {
	ID      string                 `json:"id"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Date    time.Time              `json:"date"`
	Read    bool                   `json:"read"`
	Type    enums.NotificationType `json:"type"`
}
