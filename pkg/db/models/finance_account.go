package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/enums"
)

// FinanceAccount is a destination for sale payments (till, bank, mobile money).
type FinanceAccount struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Method    enums.PaymentMethod `gorm:"column:method;type:text;not null;default:'cash'"`
	Balance   decimal.Decimal     `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	Active    bool                `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
