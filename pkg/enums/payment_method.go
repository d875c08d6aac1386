package enums

import "fmt"

// PaymentMethod identifies how a booking is being paid for.
type PaymentMethod string

const (
	PaymentMethodChapa PaymentMethod = "CHAPA"
	PaymentMethodPOS   PaymentMethod = "POS"
	PaymentMethodCash  PaymentMethod = "CASH"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodChapa,
	PaymentMethodPOS,
	PaymentMethodCash,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
