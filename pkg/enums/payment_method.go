package enums

import "fmt"

// PaymentMethod describes how a customer settles a sale.
type PaymentMethod string

const (
	PaymentMethodCash              PaymentMethod = "cash"
	PaymentMethodCard              PaymentMethod = "card"
	PaymentMethodTransfer          PaymentMethod = "transfer"
	PaymentMethodInstallment       PaymentMethod = "installment"
	PaymentMethodPaymentOnDelivery PaymentMethod = "payment_on_delivery"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodTransfer,
	PaymentMethodInstallment,
	PaymentMethodPaymentOnDelivery,
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
