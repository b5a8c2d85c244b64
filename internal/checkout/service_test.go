package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/latsops/pos-backend/internal/sale"
	"github.com/latsops/pos-backend/pkg/db/models"
	"github.com/latsops/pos-backend/pkg/enums"
	pkgerrors "github.com/latsops/pos-backend/pkg/errors"
)

// saleGatewayStub implements sale.Gateway entirely in memory so the service
// can be exercised end to end without a database.
type saleGatewayStub struct {
	orders     []*models.SaleOrder
	items      map[uuid.UUID]int
	paid       map[uuid.UUID]decimal.Decimal
	paymentErr error
}

func newSaleGatewayStub() *saleGatewayStub {
	return &saleGatewayStub{
		items: map[uuid.UUID]int{},
		paid:  map[uuid.UUID]decimal.Decimal{},
	}
}

func (g *saleGatewayStub) CurrentOperator(context.Context) (*sale.Operator, error) {
	return &sale.Operator{ID: uuid.New(), Name: "Till One"}, nil
}

func (g *saleGatewayStub) CreateSaleOrder(_ context.Context, order *models.SaleOrder) (*models.SaleOrder, error) {
	order.ID = uuid.New()
	g.orders = append(g.orders, order)
	return order, nil
}

func (g *saleGatewayStub) CreateOrderItems(_ context.Context, orderID uuid.UUID, items []models.SaleOrderItem) error {
	g.items[orderID] += len(items)
	return nil
}

func (g *saleGatewayStub) CountOrderItems(_ context.Context, orderID uuid.UUID) (int64, error) {
	return int64(g.items[orderID]), nil
}

func (g *saleGatewayStub) AdjustInventory(context.Context, []sale.InventoryAdjustment) error {
	return nil
}

func (g *saleGatewayStub) RecordPayment(_ context.Context, orderID, _ uuid.UUID, amount decimal.Decimal) error {
	if g.paymentErr != nil {
		return g.paymentErr
	}
	g.paid[orderID] = g.paid[orderID].Add(amount)
	return nil
}

func (g *saleGatewayStub) PaymentTotal(_ context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	return g.paid[orderID], nil
}

func (g *saleGatewayStub) GrantLoyaltyPoints(context.Context, uuid.UUID, int) error {
	return nil
}

type stubOrderReader struct {
	order *models.SaleOrder
	err   error
}

func (s *stubOrderReader) GetOrderDetail(context.Context, uuid.UUID) (*models.SaleOrder, error) {
	return s.order, s.err
}

func serviceInput() sale.Input {
	return sale.Input{
		Lines: []sale.CartLine{
			{
				ItemID:    uuid.New(),
				Kind:      enums.CartLineKindVariant,
				Name:      "Item A",
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("10.00"),
				LineTotal: decimal.RequireFromString("20.00"),
			},
		},
		CustomerID: uuid.New(),
		Totals: sale.Totals{
			Subtotal:   decimal.RequireFromString("20.00"),
			Tax:        decimal.RequireFromString("2.00"),
			Shipping:   decimal.RequireFromString("5.00"),
			Total:      decimal.RequireFromString("27.00"),
			AmountPaid: decimal.RequireFromString("27.00"),
			BalanceDue: decimal.Zero,
		},
		Delivery: sale.DeliveryInfo{
			Method:       enums.DeliveryMethodPickup,
			CustomerType: enums.CustomerTypeRetail,
		},
		PaymentAccountID: uuid.New(),
		PaymentMethod:    enums.PaymentMethodCash,
	}
}

func TestProcessRetryReusesRun(t *testing.T) {
	t.Parallel()

	gateway := newSaleGatewayStub()
	gateway.paymentErr = errors.New("till offline")
	engine, err := sale.NewEngine(gateway, sale.Options{})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	service, err := NewService(engine, sale.NewRegistry(), &stubOrderReader{})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	input := serviceInput()
	outcome := service.Process(context.Background(), "ref-1", input)
	if outcome.Kind != sale.OutcomeFailed || !outcome.Resumable {
		t.Fatalf("expected resumable failure, got %+v", outcome)
	}

	gateway.paymentErr = nil
	retry := service.Process(context.Background(), "ref-1", input)
	if retry.Kind != sale.OutcomeSucceeded {
		t.Fatalf("retry should succeed, got %s (%s)", retry.Kind, retry.Message)
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("retry with the same reference must not duplicate orders, got %d", len(gateway.orders))
	}
}

func TestProcessWithoutReferenceRunsFresh(t *testing.T) {
	t.Parallel()

	gateway := newSaleGatewayStub()
	engine, err := sale.NewEngine(gateway, sale.Options{})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	service, err := NewService(engine, nil, &stubOrderReader{})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	outcome := service.Process(context.Background(), "", serviceInput())
	if outcome.Kind != sale.OutcomeSucceeded {
		t.Fatalf("expected success, got %s (%s)", outcome.Kind, outcome.Message)
	}
}

func TestConfirmationNotFound(t *testing.T) {
	t.Parallel()

	engine, err := sale.NewEngine(newSaleGatewayStub(), sale.Options{})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	service, err := NewService(engine, nil, &stubOrderReader{err: gorm.ErrRecordNotFound})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = service.Confirmation(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}
