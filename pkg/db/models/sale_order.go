package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/enums"
)

// SaleOrder is the durable header created partway through a sale run. Once
// created it anchors order items, inventory deltas, and payments.
type SaleOrder struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	TotalAmount     decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal      `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TaxAmount       decimal.Decimal      `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	ShippingCost    decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	FinalAmount     decimal.Decimal      `gorm:"column:final_amount;type:numeric(12,2);not null"`
	AmountPaid      decimal.Decimal      `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	BalanceDue      decimal.Decimal      `gorm:"column:balance_due;type:numeric(12,2);not null;default:0"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	CustomerType    enums.CustomerType   `gorm:"column:customer_type;type:text;not null;default:'retail'"`
	DeliveryAddress string               `gorm:"column:delivery_address"`
	DeliveryCity    string               `gorm:"column:delivery_city"`
	DeliveryMethod  enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null;default:'pickup'"`
	DeliveryNotes   string               `gorm:"column:delivery_notes"`
	Status          enums.SaleStatus     `gorm:"column:status;type:text;not null"`
	CreatedBy       uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	Items           []SaleOrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
