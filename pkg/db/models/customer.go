package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/latsops/pos-backend/pkg/enums"
)

// Customer is the account a sale is attributed to.
type Customer struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	Phone         string             `gorm:"column:phone"`
	Type          enums.CustomerType `gorm:"column:type;type:text;not null;default:'retail'"`
	LoyaltyPoints int                `gorm:"column:loyalty_points;not null;default:0"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
