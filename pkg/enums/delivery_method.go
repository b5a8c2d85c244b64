package enums

import "fmt"

// DeliveryMethod names how a sale reaches the customer.
type DeliveryMethod string

const (
	DeliveryMethodLocalTransport DeliveryMethod = "local_transport"
	DeliveryMethodAirCargo       DeliveryMethod = "air_cargo"
	DeliveryMethodBusCargo       DeliveryMethod = "bus_cargo"
	DeliveryMethodPickup         DeliveryMethod = "pickup"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodLocalTransport,
	DeliveryMethodAirCargo,
	DeliveryMethodBusCargo,
	DeliveryMethodPickup,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
