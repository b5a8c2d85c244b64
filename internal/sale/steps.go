package sale

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/latsops/pos-backend/pkg/db/models"
	"github.com/latsops/pos-backend/pkg/enums"
)

// Progress labels are fixed per step; the UI shows whichever one the run
// stopped on.
const (
	labelValidating = "Validating order data…"
	labelAuth       = "Verifying operator session…"
	labelCreating   = "Creating sale order…"
	labelItemizing  = "Adding items to order…"
	labelInventory  = "Updating inventory…"
	labelPayment    = "Processing payment…"
	labelFinalizing = "Finalizing sale…"
)

// defaultCostMargin derives unit cost from unit price when the catalog has no
// explicit cost for a line.
var defaultCostMargin = decimal.RequireFromString("0.70")

type step struct {
	name   string
	label  string
	status Status
	kind   ErrorKind
	run    func(ctx context.Context, e *Engine, r *Run) error
}

// pipelineSteps is the fixed, ordered sequence every run executes. The slice
// is rebuilt per engine so tests can inspect it without sharing state.
func pipelineSteps() []step {
	return []step{
		{name: "validate", label: labelValidating, status: StatusValidating, kind: KindValidation, run: stepValidate},
		{name: "authenticate", label: labelAuth, status: StatusValidating, kind: KindAuthentication, run: stepAuthenticate},
		{name: "create_order", label: labelCreating, status: StatusCreating, kind: KindCreation, run: stepCreateOrder},
		{name: "itemize_lines", label: labelItemizing, status: StatusItemizingLines, kind: KindItemization, run: stepItemizeLines},
		{name: "adjust_inventory", label: labelInventory, status: StatusAdjustingInventory, kind: KindInventory, run: stepAdjustInventory},
		{name: "process_payment", label: labelPayment, status: StatusProcessingPayment, kind: KindPayment, run: stepProcessPayment},
		{name: "finalize", label: labelFinalizing, status: StatusFinalizing, kind: KindCreation, run: stepFinalize},
	}
}

// stepValidate checks the input in a fixed order; the first violation wins.
// It has no side effects.
func stepValidate(_ context.Context, _ *Engine, r *Run) error {
	if len(r.Input.Lines) == 0 {
		return newError(KindValidation, "cart is empty")
	}
	if r.Input.CustomerID == uuid.Nil {
		return newError(KindValidation, "no customer selected")
	}
	if r.Input.PaymentAccountID == uuid.Nil {
		return newError(KindValidation, "no payment account selected")
	}

	for i, line := range r.Input.Lines {
		if line.Quantity < 1 {
			return newError(KindValidation, fmt.Sprintf("line %d: quantity must be at least 1", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return newError(KindValidation, fmt.Sprintf("line %d: unit price cannot be negative", i+1))
		}
		if !line.LineTotal.Equal(line.ComputedTotal()) {
			return newError(KindValidation, fmt.Sprintf("line %d: line total does not match quantity x unit price", i+1))
		}
		if line.Kind == enums.CartLineKindExternalItem && line.External == nil {
			return newError(KindValidation, fmt.Sprintf("line %d: external item is missing its snapshot", i+1))
		}
	}

	if !r.Input.Totals.Consistent() {
		return newError(KindValidation, "totals do not reconcile")
	}
	return nil
}

// stepAuthenticate confirms an active operator session exists. Failure
// requires re-login; retrying the run alone cannot fix it.
func stepAuthenticate(ctx context.Context, e *Engine, r *Run) error {
	operator, err := e.gateway.CurrentOperator(ctx)
	if err != nil {
		return wrapError(KindAuthentication, err, "resolving operator session")
	}
	if operator == nil {
		return newError(KindAuthentication, "no active operator session")
	}
	r.operator = operator
	return nil
}

// stepCreateOrder persists the sale order header. If the run context already
// carries an order id from a previous attempt, the step is skipped so
// repeated retries never create duplicate order rows.
func stepCreateOrder(ctx context.Context, e *Engine, r *Run) error {
	if r.createdOrderID != nil {
		e.logf(ctx, r, "sale order already created, skipping")
		return nil
	}

	totals := r.Input.Totals
	order := &models.SaleOrder{
		CustomerID:      r.Input.CustomerID,
		TotalAmount:     totals.Subtotal,
		TaxAmount:       totals.Tax,
		ShippingCost:    totals.Shipping,
		FinalAmount:     totals.Total,
		AmountPaid:      totals.AmountPaid,
		BalanceDue:      totals.BalanceDue,
		PaymentMethod:   r.Input.PaymentMethod,
		CustomerType:    r.Input.Delivery.CustomerType,
		DeliveryAddress: r.Input.Delivery.Address,
		DeliveryCity:    r.Input.Delivery.City,
		DeliveryMethod:  r.Input.Delivery.Method,
		DeliveryNotes:   r.Input.Delivery.Notes,
		Status:          deriveStatus(totals),
		CreatedBy:       r.operator.ID,
	}

	created, err := e.gateway.CreateSaleOrder(ctx, order)
	if err != nil {
		return wrapError(KindCreation, err, "creating sale order")
	}
	r.order = created
	id := created.ID
	r.createdOrderID = &id
	return nil
}

// stepItemizeLines persists one order-item row per cart line, keyed by the
// order created above. Rows are written line by line: a failure identifies
// the offending line and earlier rows from the same attempt stay put (the
// retry skip below is the mitigation). When rows already exist for the order
// the whole step no-ops.
func stepItemizeLines(ctx context.Context, e *Engine, r *Run) error {
	orderID := r.CreatedOrderID()

	existing, err := e.gateway.CountOrderItems(ctx, orderID)
	if err != nil {
		return wrapError(KindItemization, err, "checking existing order items")
	}
	if existing > 0 {
		e.logf(ctx, r, "order items already present, skipping")
		return nil
	}

	for i, line := range r.Input.Lines {
		item := buildOrderItem(orderID, line, e.costMargin)
		if err := e.gateway.CreateOrderItems(ctx, orderID, []models.SaleOrderItem{item}); err != nil {
			return wrapError(KindItemization, err, fmt.Sprintf("adding line %d (%s) to order", i+1, line.Name))
		}
	}
	return nil
}

// stepAdjustInventory decrements stock for variant lines. External items and
// plain catalog lines carry no tracked stock. Completion is memoized on the
// run so a retry past this point does not double-decrement.
func stepAdjustInventory(ctx context.Context, e *Engine, r *Run) error {
	if r.inventoryAdjusted {
		e.logf(ctx, r, "inventory already adjusted, skipping")
		return nil
	}

	adjustments := make([]InventoryAdjustment, 0, len(r.Input.Lines))
	for _, line := range r.Input.Lines {
		if line.Kind != enums.CartLineKindVariant {
			continue
		}
		adjustments = append(adjustments, InventoryAdjustment{VariantID: line.ItemID, Quantity: line.Quantity})
	}
	if len(adjustments) > 0 {
		if err := e.gateway.AdjustInventory(ctx, adjustments); err != nil {
			return wrapError(KindInventory, err, "updating inventory")
		}
	}
	r.inventoryAdjusted = true
	return nil
}

// stepProcessPayment applies the tendered amount against the selected
// account. A payment already recorded for the order (by an earlier attempt)
// makes this a no-op.
func stepProcessPayment(ctx context.Context, e *Engine, r *Run) error {
	amount := r.Input.Totals.AmountPaid
	if amount.IsZero() {
		return nil
	}

	orderID := r.CreatedOrderID()
	paid, err := e.gateway.PaymentTotal(ctx, orderID)
	if err != nil {
		return wrapError(KindPayment, err, "checking recorded payments")
	}
	if paid.GreaterThanOrEqual(amount) {
		e.logf(ctx, r, "payment already recorded, skipping")
		return nil
	}

	if err := e.gateway.RecordPayment(ctx, orderID, r.Input.PaymentAccountID, amount); err != nil {
		return wrapError(KindPayment, err, "processing payment")
	}
	return nil
}

// stepFinalize assembles the terminal payload and applies non-fatal
// follow-ups. Loyalty accrual failures become warnings, never a failed run.
func stepFinalize(ctx context.Context, e *Engine, r *Run) error {
	var followUps error
	if points := loyaltyPoints(r.Input.Totals.Total, e.loyaltyDivisor); points > 0 {
		if err := e.gateway.GrantLoyaltyPoints(ctx, r.Input.CustomerID, points); err != nil {
			followUps = multierr.Append(followUps, fmt.Errorf("granting %d loyalty points: %w", points, err))
		}
	}

	for _, err := range multierr.Errors(followUps) {
		r.warnings = append(r.warnings, err.Error())
		if e.logger != nil {
			e.logger.Warn(ctx, "sale finalize follow-up failed: "+err.Error())
		}
	}
	return nil
}

func deriveStatus(totals Totals) enums.SaleStatus {
	if totals.AmountPaid.GreaterThanOrEqual(totals.Total) {
		return enums.SaleStatusCompleted
	}
	return enums.SaleStatusPartiallyPaid
}

func loyaltyPoints(total decimal.Decimal, divisor int) int {
	if divisor <= 0 {
		return 0
	}
	return int(total.Div(decimal.NewFromInt(int64(divisor))).IntPart())
}

func buildOrderItem(orderID uuid.UUID, line CartLine, costMargin decimal.Decimal) models.SaleOrderItem {
	item := models.SaleOrderItem{
		OrderID:   orderID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		UnitCost:  line.UnitPrice.Mul(costMargin).Round(2),
		ItemTotal: line.ComputedTotal(),
	}

	switch line.Kind {
	case enums.CartLineKindVariant:
		id := line.ItemID
		item.VariantID = &id
	case enums.CartLineKindExternalItem:
		item.IsExternalProduct = true
		if line.External != nil {
			name := line.External.Name
			description := line.External.Description
			price := line.External.Price
			item.ExternalName = &name
			item.ExternalDescription = &description
			item.ExternalPrice = &price
		}
	default:
		id := line.ItemID
		item.ProductID = &id
	}
	return item
}
