package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/db/models"
)

// Operator identifies the authenticated user running the sale.
type Operator struct {
	ID   uuid.UUID
	Name string
}

// InventoryAdjustment asks the gateway to decrement stock for one variant.
type InventoryAdjustment struct {
	VariantID uuid.UUID
	Quantity  int
}

// Gateway is the persistence capability surface the pipeline consumes. The
// engine treats it as the sole mutator of durable state: every suspension
// point in a run is one of these calls, awaited to completion before the next
// step begins.
//
// CountOrderItems and PaymentTotal exist so steps can detect work already
// committed by an earlier attempt of the same run and skip it.
type Gateway interface {
	CurrentOperator(ctx context.Context) (*Operator, error)
	CreateSaleOrder(ctx context.Context, order *models.SaleOrder) (*models.SaleOrder, error)
	CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []models.SaleOrderItem) error
	CountOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error)
	AdjustInventory(ctx context.Context, adjustments []InventoryAdjustment) error
	RecordPayment(ctx context.Context, orderID, accountID uuid.UUID, amount decimal.Decimal) error
	PaymentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	GrantLoyaltyPoints(ctx context.Context, customerID uuid.UUID, points int) error
}
