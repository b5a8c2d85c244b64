package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleOrderItem snapshots one cart line against a sale order. Exactly one of
// ProductID/VariantID is set for catalog lines; external lines leave both nil
// and carry the inline snapshot columns instead.
type SaleOrderItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID           *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	VariantID           *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Quantity            int             `gorm:"column:quantity;not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	UnitCost            decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	ItemTotal           decimal.Decimal `gorm:"column:item_total;type:numeric(12,2);not null"`
	IsExternalProduct   bool            `gorm:"column:is_external_product;not null;default:false"`
	ExternalName        *string         `gorm:"column:external_name"`
	ExternalDescription *string         `gorm:"column:external_description"`
	ExternalPrice       *decimal.Decimal `gorm:"column:external_price;type:numeric(12,2)"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
}
