package enums

import "fmt"

// CartLineKind identifies what a cart line points at: a plain catalog item, a
// sellable variant with tracked stock, or an externally sourced item that only
// carries an inline snapshot.
type CartLineKind string

const (
	CartLineKindCatalogItem  CartLineKind = "catalog_item"
	CartLineKindVariant      CartLineKind = "variant"
	CartLineKindExternalItem CartLineKind = "external_item"
)

var validCartLineKinds = []CartLineKind{
	CartLineKindCatalogItem,
	CartLineKindVariant,
	CartLineKindExternalItem,
}

// String implements fmt.Stringer.
func (c CartLineKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartLineKind.
func (c CartLineKind) IsValid() bool {
	for _, candidate := range validCartLineKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartLineKind converts raw input into a CartLineKind.
func ParseCartLineKind(value string) (CartLineKind, error) {
	for _, candidate := range validCartLineKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart line kind %q", value)
}
