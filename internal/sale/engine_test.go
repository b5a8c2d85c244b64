package sale

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/db/models"
	"github.com/latsops/pos-backend/pkg/enums"
)

type recordedPayment struct {
	accountID uuid.UUID
	amount    decimal.Decimal
}

type stubGateway struct {
	operator    *Operator
	operatorErr error

	orders         []*models.SaleOrder
	createOrderErr error

	items         map[uuid.UUID][]models.SaleOrderItem
	createItemErr error
	failOnLine    int

	adjustments [][]InventoryAdjustment
	adjustErr   error

	payments   map[uuid.UUID][]recordedPayment
	paymentErr error

	loyalty    map[uuid.UUID]int
	loyaltyErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		operator: &Operator{ID: uuid.New(), Name: "Till One"},
		items:    map[uuid.UUID][]models.SaleOrderItem{},
		payments: map[uuid.UUID][]recordedPayment{},
		loyalty:  map[uuid.UUID]int{},
	}
}

func (g *stubGateway) CurrentOperator(context.Context) (*Operator, error) {
	return g.operator, g.operatorErr
}

func (g *stubGateway) CreateSaleOrder(_ context.Context, order *models.SaleOrder) (*models.SaleOrder, error) {
	if g.createOrderErr != nil {
		return nil, g.createOrderErr
	}
	order.ID = uuid.New()
	g.orders = append(g.orders, order)
	return order, nil
}

func (g *stubGateway) CreateOrderItems(_ context.Context, orderID uuid.UUID, items []models.SaleOrderItem) error {
	if g.createItemErr != nil && g.failOnLine == len(g.items[orderID])+1 {
		return g.createItemErr
	}
	g.items[orderID] = append(g.items[orderID], items...)
	return nil
}

func (g *stubGateway) CountOrderItems(_ context.Context, orderID uuid.UUID) (int64, error) {
	return int64(len(g.items[orderID])), nil
}

func (g *stubGateway) AdjustInventory(_ context.Context, adjustments []InventoryAdjustment) error {
	if g.adjustErr != nil {
		return g.adjustErr
	}
	g.adjustments = append(g.adjustments, adjustments)
	return nil
}

func (g *stubGateway) RecordPayment(_ context.Context, orderID, accountID uuid.UUID, amount decimal.Decimal) error {
	if g.paymentErr != nil {
		return g.paymentErr
	}
	g.payments[orderID] = append(g.payments[orderID], recordedPayment{accountID: accountID, amount: amount})
	return nil
}

func (g *stubGateway) PaymentTotal(_ context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range g.payments[orderID] {
		total = total.Add(p.amount)
	}
	return total, nil
}

func (g *stubGateway) GrantLoyaltyPoints(_ context.Context, customerID uuid.UUID, points int) error {
	if g.loyaltyErr != nil {
		return g.loyaltyErr
	}
	g.loyalty[customerID] += points
	return nil
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// happyInput mirrors the canonical scenario: one line of qty 2 at 10.00 with
// tax 2.00 and shipping 5.00, fully paid.
func happyInput() Input {
	itemID := uuid.New()
	return Input{
		Lines: []CartLine{
			{
				ItemID:    itemID,
				Kind:      enums.CartLineKindVariant,
				Name:      "Item A",
				Quantity:  2,
				UnitPrice: dec("10.00"),
				LineTotal: dec("20.00"),
			},
		},
		CustomerID: uuid.New(),
		Totals: Totals{
			Subtotal:   dec("20.00"),
			Tax:        dec("2.00"),
			Shipping:   dec("5.00"),
			Total:      dec("27.00"),
			AmountPaid: dec("27.00"),
			BalanceDue: dec("0.00"),
		},
		Delivery: DeliveryInfo{
			Address:      "12 Uhuru St",
			City:         "Arusha",
			Method:       enums.DeliveryMethodPickup,
			CustomerType: enums.CustomerTypeRetail,
		},
		PaymentAccountID: uuid.New(),
		PaymentMethod:    enums.PaymentMethodCash,
	}
}

func newTestEngine(t *testing.T, gateway Gateway, opts Options) *Engine {
	t.Helper()
	engine, err := NewEngine(gateway, opts)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return engine
}

func TestHappyPathSucceeds(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	engine := newTestEngine(t, gateway, Options{})

	input := happyInput()
	outcome := engine.Run(context.Background(), input)

	if outcome.Kind != OutcomeSucceeded {
		t.Fatalf("expected success, got %s (%s)", outcome.Kind, outcome.Message)
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(gateway.orders))
	}

	order := gateway.orders[0]
	if !order.FinalAmount.Equal(dec("27.00")) {
		t.Fatalf("final amount mismatch: %s", order.FinalAmount)
	}
	if !order.TotalAmount.Equal(dec("20.00")) {
		t.Fatalf("total amount should be subtotal: %s", order.TotalAmount)
	}
	if order.Status != enums.SaleStatusCompleted {
		t.Fatalf("fully paid sale should be completed, got %s", order.Status)
	}
	if order.CreatedBy != gateway.operator.ID {
		t.Fatalf("order not attributed to operator")
	}

	if len(gateway.items[order.ID]) != 1 {
		t.Fatalf("expected 1 item row, got %d", len(gateway.items[order.ID]))
	}
	item := gateway.items[order.ID][0]
	if item.VariantID == nil || *item.VariantID != input.Lines[0].ItemID {
		t.Fatalf("variant line should reference the variant")
	}
	if !item.UnitCost.Equal(dec("7.00")) {
		t.Fatalf("unit cost should derive from the margin: %s", item.UnitCost)
	}

	if len(gateway.payments[order.ID]) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(gateway.payments[order.ID]))
	}
	payment := gateway.payments[order.ID][0]
	if payment.accountID != input.PaymentAccountID {
		t.Fatalf("payment against the wrong account")
	}
	if !payment.amount.Equal(dec("27.00")) {
		t.Fatalf("payment amount mismatch: %s", payment.amount)
	}

	if outcome.Receipt == nil || outcome.Receipt.OrderID != order.ID {
		t.Fatalf("receipt should reference the order")
	}
	if !outcome.Receipt.Totals.Total.Equal(outcome.Receipt.Totals.Subtotal.Add(outcome.Receipt.Totals.Tax).Add(outcome.Receipt.Totals.Shipping)) {
		t.Fatalf("receipt totals do not reconcile")
	}

	// floor(27/100) = 0: no loyalty accrues on small sales.
	if gateway.loyalty[input.CustomerID] != 0 {
		t.Fatalf("unexpected loyalty grant: %d", gateway.loyalty[input.CustomerID])
	}
}

func TestValidationOrderingCartWins(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, newStubGateway(), Options{})

	outcome := engine.Run(context.Background(), Input{})
	if outcome.Kind != OutcomeFailed {
		t.Fatalf("expected failure")
	}
	if outcome.Reason != KindValidation {
		t.Fatalf("unexpected kind: %s", outcome.Reason)
	}
	if outcome.Message != "cart is empty" {
		t.Fatalf("first check should win, got %q", outcome.Message)
	}
	if outcome.Resumable {
		t.Fatalf("validation failures are not resumable")
	}
	if outcome.StepLabel != "Validating order data…" {
		t.Fatalf("progress should freeze on the validating label, got %q", outcome.StepLabel)
	}
}

func TestValidationMissingCustomer(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, newStubGateway(), Options{})

	input := happyInput()
	input.CustomerID = uuid.Nil
	outcome := engine.Run(context.Background(), input)

	if outcome.Message != "no customer selected" {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
}

func TestAuthenticationFailureNotResumable(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	gateway.operator = nil
	engine := newTestEngine(t, gateway, Options{})

	outcome := engine.Run(context.Background(), happyInput())
	if outcome.Reason != KindAuthentication {
		t.Fatalf("unexpected kind: %s", outcome.Reason)
	}
	if outcome.Resumable {
		t.Fatalf("authentication failures require re-login, not retry")
	}
	if len(gateway.orders) != 0 {
		t.Fatalf("no order should exist before authentication passes")
	}
}

func TestPaymentFailureThenRetrySucceedsWithoutDuplicates(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	gateway.paymentErr = errors.New("account unavailable")
	engine := newTestEngine(t, gateway, Options{})

	run := engine.NewRun(happyInput())
	outcome := engine.Execute(context.Background(), run)

	if outcome.Kind != OutcomeFailed || outcome.Reason != KindPayment {
		t.Fatalf("expected payment failure, got %s/%s", outcome.Kind, outcome.Reason)
	}
	if !outcome.Resumable {
		t.Fatalf("payment failures are resumable")
	}
	if outcome.StepLabel != "Processing payment…" {
		t.Fatalf("label should freeze at the failing step, got %q", outcome.StepLabel)
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("order should exist from the first attempt")
	}
	orderID := gateway.orders[0].ID
	if len(gateway.items[orderID]) != 1 {
		t.Fatalf("items should exist from the first attempt")
	}
	if len(gateway.adjustments) != 1 {
		t.Fatalf("inventory should have been adjusted once")
	}

	gateway.paymentErr = nil
	retry := engine.Execute(context.Background(), run)

	if retry.Kind != OutcomeSucceeded {
		t.Fatalf("retry should succeed, got %s (%s)", retry.Kind, retry.Message)
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("retry must not create a second order, got %d", len(gateway.orders))
	}
	if retry.Order.ID != orderID {
		t.Fatalf("retry must reuse the first order id")
	}
	if len(gateway.items[orderID]) != 1 {
		t.Fatalf("retry must not duplicate item rows, got %d", len(gateway.items[orderID]))
	}
	if len(gateway.adjustments) != 1 {
		t.Fatalf("retry must not double-decrement inventory, got %d", len(gateway.adjustments))
	}
	if len(gateway.payments[orderID]) != 1 {
		t.Fatalf("expected exactly one payment after retry")
	}
}

func TestItemizationFailureIdentifiesLine(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	gateway.createItemErr = errors.New("insert failed")
	gateway.failOnLine = 2
	engine := newTestEngine(t, gateway, Options{})

	input := happyInput()
	second := CartLine{
		ItemID:    uuid.New(),
		Kind:      enums.CartLineKindCatalogItem,
		Name:      "Item B",
		Quantity:  1,
		UnitPrice: dec("5.00"),
		LineTotal: dec("5.00"),
	}
	input.Lines = append(input.Lines, second)
	input.Totals = Totals{
		Subtotal:   dec("25.00"),
		Tax:        dec("2.00"),
		Shipping:   dec("5.00"),
		Total:      dec("32.00"),
		AmountPaid: dec("32.00"),
		BalanceDue: dec("0.00"),
	}

	outcome := engine.Run(context.Background(), input)
	if outcome.Reason != KindItemization {
		t.Fatalf("unexpected kind: %s", outcome.Reason)
	}
	if want := "adding line 2 (Item B) to order"; outcome.Message != want {
		t.Fatalf("message should identify the offending line, got %q", outcome.Message)
	}

	// The first line's row stays: no automatic cleanup of partial work.
	orderID := gateway.orders[0].ID
	if len(gateway.items[orderID]) != 1 {
		t.Fatalf("earlier rows should persist, got %d", len(gateway.items[orderID]))
	}
}

func TestInventoryOnlyAdjustsVariantLines(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	engine := newTestEngine(t, gateway, Options{})

	input := happyInput()
	external := dec("3.00")
	input.Lines = append(input.Lines,
		CartLine{
			ItemID:    uuid.New(),
			Kind:      enums.CartLineKindCatalogItem,
			Name:      "Catalog",
			Quantity:  1,
			UnitPrice: dec("4.00"),
			LineTotal: dec("4.00"),
		},
		CartLine{
			ItemID:    uuid.New(),
			Kind:      enums.CartLineKindExternalItem,
			Name:      "External",
			Quantity:  1,
			UnitPrice: external,
			LineTotal: external,
			External:  &ExternalSnapshot{Name: "External", Description: "sourced", Price: external},
		},
	)
	input.Totals = Totals{
		Subtotal:   dec("27.00"),
		Tax:        dec("2.00"),
		Shipping:   dec("5.00"),
		Total:      dec("34.00"),
		AmountPaid: dec("34.00"),
		BalanceDue: dec("0.00"),
	}

	outcome := engine.Run(context.Background(), input)
	if outcome.Kind != OutcomeSucceeded {
		t.Fatalf("expected success, got %s (%s)", outcome.Kind, outcome.Message)
	}
	if len(gateway.adjustments) != 1 {
		t.Fatalf("expected one adjustment batch")
	}
	if len(gateway.adjustments[0]) != 1 {
		t.Fatalf("only the variant line should decrement stock, got %d", len(gateway.adjustments[0]))
	}
	if gateway.adjustments[0][0].Quantity != 2 {
		t.Fatalf("unexpected decrement qty: %d", gateway.adjustments[0][0].Quantity)
	}

	orderID := gateway.orders[0].ID
	var externalRows int
	for _, item := range gateway.items[orderID] {
		if item.IsExternalProduct {
			externalRows++
			if item.ExternalName == nil || *item.ExternalName != "External" {
				t.Fatalf("external rows must carry the inline snapshot")
			}
			if item.ProductID != nil || item.VariantID != nil {
				t.Fatalf("external rows must not reference the catalog")
			}
		}
	}
	if externalRows != 1 {
		t.Fatalf("expected one external row, got %d", externalRows)
	}
}

func TestPartialPaymentMarksOrderPartiallyPaid(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	engine := newTestEngine(t, gateway, Options{})

	input := happyInput()
	input.Totals.AmountPaid = dec("10.00")
	input.Totals.BalanceDue = dec("17.00")

	outcome := engine.Run(context.Background(), input)
	if outcome.Kind != OutcomeSucceeded {
		t.Fatalf("expected success, got %s (%s)", outcome.Kind, outcome.Message)
	}
	if gateway.orders[0].Status != enums.SaleStatusPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", gateway.orders[0].Status)
	}
	if !gateway.orders[0].BalanceDue.Equal(dec("17.00")) {
		t.Fatalf("balance due mismatch: %s", gateway.orders[0].BalanceDue)
	}
}

func TestLoyaltyFailureIsNonFatalWarning(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	gateway.loyaltyErr = errors.New("customer service down")
	engine := newTestEngine(t, gateway, Options{LoyaltyDivisor: 10})

	outcome := engine.Run(context.Background(), happyInput())
	if outcome.Kind != OutcomeSucceeded {
		t.Fatalf("loyalty failures must not fail the run, got %s", outcome.Kind)
	}
	if len(outcome.Receipt.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", outcome.Receipt.Warnings)
	}
}

func TestLoyaltyAccruesOnLargeTotals(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	engine := newTestEngine(t, gateway, Options{LoyaltyDivisor: 10})

	input := happyInput()
	outcome := engine.Run(context.Background(), input)
	if outcome.Kind != OutcomeSucceeded {
		t.Fatalf("expected success")
	}
	// floor(27/10) = 2 points.
	if gateway.loyalty[input.CustomerID] != 2 {
		t.Fatalf("expected 2 points, got %d", gateway.loyalty[input.CustomerID])
	}
}

func TestObserverSeesLabelSequence(t *testing.T) {
	t.Parallel()

	var labels []string
	var statuses []Status
	engine := newTestEngine(t, newStubGateway(), Options{
		Observer: func(tr Transition) {
			labels = append(labels, tr.Label)
			statuses = append(statuses, tr.Status)
		},
	})

	outcome := engine.Run(context.Background(), happyInput())
	if outcome.Kind != OutcomeSucceeded {
		t.Fatalf("expected success")
	}

	want := []string{
		"Validating order data…",
		"Verifying operator session…",
		"Creating sale order…",
		"Adding items to order…",
		"Updating inventory…",
		"Processing payment…",
		"Finalizing sale…",
		"Finalizing sale…",
	}
	if len(labels) != len(want) {
		t.Fatalf("expected %d transitions, got %d (%v)", len(want), len(labels), labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("transition %d: got %q want %q", i, labels[i], want[i])
		}
	}
	if statuses[len(statuses)-1] != StatusSucceeded {
		t.Fatalf("final transition should be the terminal state, got %s", statuses[len(statuses)-1])
	}
}

func TestExecuteOnSucceededRunReturnsSameOutcome(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	engine := newTestEngine(t, gateway, Options{})

	run := engine.NewRun(happyInput())
	first := engine.Execute(context.Background(), run)
	second := engine.Execute(context.Background(), run)

	if second.Kind != OutcomeSucceeded {
		t.Fatalf("expected success")
	}
	if first.Order.ID != second.Order.ID {
		t.Fatalf("outcome should be stable")
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("re-executing a terminal run must not touch the gateway")
	}
}

func TestCreationFailureIsResumable(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	gateway.createOrderErr = errors.New("connection reset")
	engine := newTestEngine(t, gateway, Options{})

	run := engine.NewRun(happyInput())
	outcome := engine.Execute(context.Background(), run)
	if outcome.Reason != KindCreation || !outcome.Resumable {
		t.Fatalf("expected resumable creation failure, got %s resumable=%v", outcome.Reason, outcome.Resumable)
	}
	if run.CreatedOrderID() != uuid.Nil {
		t.Fatalf("no order id should be memoized on creation failure")
	}

	gateway.createOrderErr = nil
	retry := engine.Execute(context.Background(), run)
	if retry.Kind != OutcomeSucceeded {
		t.Fatalf("retry should succeed, got %s", retry.Kind)
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("expected exactly one order")
	}
}

func TestConcurrentSubmitsOfSameRunCreateOneOrder(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway()
	engine := newTestEngine(t, gateway, Options{})
	run := engine.NewRun(happyInput())

	outcomes := make([]Outcome, 2)
	var wg sync.WaitGroup
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = engine.Execute(context.Background(), run)
		}(i)
	}
	wg.Wait()

	for i, outcome := range outcomes {
		if outcome.Kind != OutcomeSucceeded {
			t.Fatalf("submit %d: expected success, got %s", i, outcome.Kind)
		}
	}
	if outcomes[0].Receipt.OrderID != outcomes[1].Receipt.OrderID {
		t.Fatalf("both submits must see the same order")
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(gateway.orders))
	}
	if len(gateway.adjustments) != 1 {
		t.Fatalf("expected one inventory batch, got %d", len(gateway.adjustments))
	}
}
