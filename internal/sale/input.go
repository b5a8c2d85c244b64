package sale

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/enums"
)

// Input is the immutable value a checkout hands to the pipeline. It is
// constructed once per checkout attempt and reused verbatim on retry; the
// engine never mutates it.
type Input struct {
	Lines            []CartLine
	CustomerID       uuid.UUID
	Totals           Totals
	Delivery         DeliveryInfo
	PaymentAccountID uuid.UUID
	PaymentMethod    enums.PaymentMethod
}

// CartLine is one cart entry. LineTotal is always recomputable from
// Quantity and UnitPrice.
type CartLine struct {
	ItemID    uuid.UUID
	Kind      enums.CartLineKind
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	External  *ExternalSnapshot
}

// ExternalSnapshot carries the inline description for externally sourced
// items that have no catalog reference.
type ExternalSnapshot struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// Totals holds the checkout's computed monetary summary.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	BalanceDue decimal.Decimal
}

// DeliveryInfo captures how the sale reaches the customer.
type DeliveryInfo struct {
	Address      string
	City         string
	Method       enums.DeliveryMethod
	Notes        string
	CustomerType enums.CustomerType
}

// Consistent reports whether the totals satisfy the pipeline's invariants:
// total = subtotal + tax + shipping and balance due = total - amount paid.
func (t Totals) Consistent() bool {
	if !t.Total.Equal(t.Subtotal.Add(t.Tax).Add(t.Shipping)) {
		return false
	}
	return t.BalanceDue.Equal(t.Total.Sub(t.AmountPaid))
}

// ComputedTotal returns quantity x unit price for the line.
func (l CartLine) ComputedTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Fingerprint returns a stable digest of the input, used to decide whether a
// retry carries the same unmodified checkout state.
func (i Input) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "customer=%s;account=%s;method=%s;", i.CustomerID, i.PaymentAccountID, i.PaymentMethod)
	fmt.Fprintf(&b, "totals=%s|%s|%s|%s|%s|%s;",
		i.Totals.Subtotal.String(), i.Totals.Tax.String(), i.Totals.Shipping.String(),
		i.Totals.Total.String(), i.Totals.AmountPaid.String(), i.Totals.BalanceDue.String())
	fmt.Fprintf(&b, "delivery=%s|%s|%s|%s|%s;",
		i.Delivery.Address, i.Delivery.City, i.Delivery.Method, i.Delivery.Notes, i.Delivery.CustomerType)
	for _, line := range i.Lines {
		fmt.Fprintf(&b, "line=%s|%s|%d|%s;", line.ItemID, line.Kind, line.Quantity, line.UnitPrice.String())
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
