package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/enums"
)

// Payment records money applied against a sale order from a finance account.
type Payment struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	AccountID uuid.UUID           `gorm:"column:account_id;type:uuid;not null"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method    enums.PaymentMethod `gorm:"column:method;type:text;not null;default:'cash'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
