package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/internal/sale"
	pkgauth "github.com/latsops/pos-backend/pkg/auth"
	"github.com/latsops/pos-backend/pkg/db"
	"github.com/latsops/pos-backend/pkg/db/models"
)

type orderStore interface {
	CreateSaleOrder(ctx context.Context, order *models.SaleOrder) (*models.SaleOrder, error)
	CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []models.SaleOrderItem) error
	CountOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error)
	RecordPayment(ctx context.Context, orderID, accountID uuid.UUID, amount decimal.Decimal) error
	PaymentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

type stockAdjuster interface {
	Decrement(ctx context.Context, variantID uuid.UUID, qty int) error
}

type loyaltyGranter interface {
	GrantLoyaltyPoints(ctx context.Context, customerID uuid.UUID, points int) error
}

type operatorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Gateway adapts the persistence repositories to the sale pipeline's
// effect surface. It is the only place the pipeline touches storage.
type Gateway struct {
	ordersRepo    orderStore
	stockRepo     stockAdjuster
	customersRepo loyaltyGranter
	usersRepo     operatorLoader
}

// NewGateway wires the repositories behind the pipeline.
func NewGateway(orders orderStore, stock stockAdjuster, customers loyaltyGranter, users operatorLoader) *Gateway {
	return &Gateway{
		ordersRepo:    orders,
		stockRepo:     stock,
		customersRepo: customers,
		usersRepo:     users,
	}
}

// CurrentOperator resolves the request's operator against the user store.
// A missing context identity or a deactivated account both come back as
// nil operator with no error; the pipeline turns that into an
// authentication failure.
func (g *Gateway) CurrentOperator(ctx context.Context) (*sale.Operator, error) {
	op, ok := pkgauth.OperatorFromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := g.usersRepo.FindByID(ctx, op.ID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !user.Active {
		return nil, nil
	}
	return &sale.Operator{ID: user.ID, Name: user.Name}, nil
}

func (g *Gateway) CreateSaleOrder(ctx context.Context, order *models.SaleOrder) (*models.SaleOrder, error) {
	return g.ordersRepo.CreateSaleOrder(ctx, order)
}

func (g *Gateway) CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []models.SaleOrderItem) error {
	return g.ordersRepo.CreateOrderItems(ctx, orderID, items)
}

func (g *Gateway) CountOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	return g.ordersRepo.CountOrderItems(ctx, orderID)
}

// AdjustInventory applies the decrements in order and stops at the first
// failure. Earlier decrements stay applied; a retry of the whole batch is
// guarded upstream by the run's memo.
func (g *Gateway) AdjustInventory(ctx context.Context, adjustments []sale.InventoryAdjustment) error {
	for _, adj := range adjustments {
		if err := g.stockRepo.Decrement(ctx, adj.VariantID, adj.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) RecordPayment(ctx context.Context, orderID, accountID uuid.UUID, amount decimal.Decimal) error {
	return g.ordersRepo.RecordPayment(ctx, orderID, accountID, amount)
}

func (g *Gateway) PaymentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	return g.ordersRepo.PaymentTotal(ctx, orderID)
}

func (g *Gateway) GrantLoyaltyPoints(ctx context.Context, customerID uuid.UUID, points int) error {
	return g.customersRepo.GrantLoyaltyPoints(ctx, customerID, points)
}
