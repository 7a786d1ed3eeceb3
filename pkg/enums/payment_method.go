package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is how a shopper settles an order. Payment is never
// captured; the method is recorded on the order and drives the COD fee.
type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodCOD        PaymentMethod = "cod"
)

// PaymentMethods lists the methods in checkout display order.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodUPI,
	PaymentMethodWallet,
	PaymentMethodNetBanking,
	PaymentMethodCOD,
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCard:       "Credit/Debit Card",
	PaymentMethodUPI:        "UPI",
	PaymentMethodWallet:     "Digital Wallet",
	PaymentMethodNetBanking: "Net Banking",
	PaymentMethodCOD:        "Cash on Delivery",
}

func (p PaymentMethod) String() string {
	return string(p)
}

// Label is the human readable name shown at checkout.
func (p PaymentMethod) Label() string {
	return paymentMethodLabels[p]
}

func (p PaymentMethod) IsValid() bool {
	_, ok := paymentMethodLabels[p]
	return ok
}

// ParsePaymentMethod accepts the wire value in any case.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return p, nil
}
