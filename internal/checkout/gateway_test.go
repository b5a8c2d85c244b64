package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/latsops/pos-backend/internal/sale"
	pkgauth "github.com/latsops/pos-backend/pkg/auth"
	"github.com/latsops/pos-backend/pkg/db/models"
)

type stubOrderStore struct{}

func (stubOrderStore) CreateSaleOrder(_ context.Context, order *models.SaleOrder) (*models.SaleOrder, error) {
	return order, nil
}
func (stubOrderStore) CreateOrderItems(context.Context, uuid.UUID, []models.SaleOrderItem) error {
	return nil
}
func (stubOrderStore) CountOrderItems(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (stubOrderStore) RecordPayment(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) error {
	return nil
}
func (stubOrderStore) PaymentTotal(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubStock struct {
	calls   []uuid.UUID
	failOn  uuid.UUID
	failErr error
}

func (s *stubStock) Decrement(_ context.Context, variantID uuid.UUID, _ int) error {
	if s.failErr != nil && variantID == s.failOn {
		return s.failErr
	}
	s.calls = append(s.calls, variantID)
	return nil
}

type stubLoyalty struct{}

func (stubLoyalty) GrantLoyaltyPoints(context.Context, uuid.UUID, int) error { return nil }

type stubUsers struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func TestCurrentOperatorResolvesActiveUser(t *testing.T) {
	t.Parallel()

	operatorID := uuid.New()
	users := &stubUsers{users: map[uuid.UUID]*models.User{
		operatorID: {ID: operatorID, Name: "Till One", Active: true},
	}}
	gateway := NewGateway(stubOrderStore{}, &stubStock{}, stubLoyalty{}, users)

	ctx := pkgauth.WithOperator(context.Background(), pkgauth.ContextOperator{ID: operatorID, Name: "Till One"})
	operator, err := gateway.CurrentOperator(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if operator == nil || operator.ID != operatorID {
		t.Fatalf("expected the operator back, got %+v", operator)
	}
}

func TestCurrentOperatorMissingContext(t *testing.T) {
	t.Parallel()

	gateway := NewGateway(stubOrderStore{}, &stubStock{}, stubLoyalty{}, &stubUsers{})

	operator, err := gateway.CurrentOperator(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if operator != nil {
		t.Fatalf("no context identity should mean no operator")
	}
}

func TestCurrentOperatorInactiveUser(t *testing.T) {
	t.Parallel()

	operatorID := uuid.New()
	users := &stubUsers{users: map[uuid.UUID]*models.User{
		operatorID: {ID: operatorID, Name: "Gone", Active: false},
	}}
	gateway := NewGateway(stubOrderStore{}, &stubStock{}, stubLoyalty{}, users)

	ctx := pkgauth.WithOperator(context.Background(), pkgauth.ContextOperator{ID: operatorID})
	operator, err := gateway.CurrentOperator(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if operator != nil {
		t.Fatalf("deactivated accounts must not authenticate")
	}
}

func TestCurrentOperatorUnknownUser(t *testing.T) {
	t.Parallel()

	gateway := NewGateway(stubOrderStore{}, &stubStock{}, stubLoyalty{}, &stubUsers{users: map[uuid.UUID]*models.User{}})

	ctx := pkgauth.WithOperator(context.Background(), pkgauth.ContextOperator{ID: uuid.New()})
	operator, err := gateway.CurrentOperator(ctx)
	if err != nil {
		t.Fatalf("missing rows are not lookup errors: %v", err)
	}
	if operator != nil {
		t.Fatalf("unknown ids must not authenticate")
	}
}

func TestAdjustInventoryStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	stock := &stubStock{failOn: second, failErr: errors.New("insufficient stock")}
	gateway := NewGateway(stubOrderStore{}, stock, stubLoyalty{}, &stubUsers{})

	err := gateway.AdjustInventory(context.Background(), []sale.InventoryAdjustment{
		{VariantID: first, Quantity: 1},
		{VariantID: second, Quantity: 1},
		{VariantID: third, Quantity: 1},
	})
	if err == nil {
		t.Fatalf("expected the failure to surface")
	}
	if len(stock.calls) != 1 || stock.calls[0] != first {
		t.Fatalf("should stop after the failing decrement, applied %v", stock.calls)
	}
}
