package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/api/middleware"
	"github.com/latsops/pos-backend/api/responses"
	"github.com/latsops/pos-backend/api/validators"
	"github.com/latsops/pos-backend/internal/sale"
	"github.com/latsops/pos-backend/pkg/db/models"
	"github.com/latsops/pos-backend/pkg/enums"
	pkgerrors "github.com/latsops/pos-backend/pkg/errors"
	"github.com/latsops/pos-backend/pkg/logger"
)

// checkoutPath is where clients are sent when they reach the sale entry
// point without checkout state.
const checkoutPath = "/checkout"

type saleService interface {
	Process(ctx context.Context, reference string, input sale.Input) sale.Outcome
	Confirmation(ctx context.Context, orderID uuid.UUID) (*models.SaleOrder, error)
}

// ProcessSale drives the sale pipeline for a submitted checkout payload.
func ProcessSale(svc saleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale service unavailable"))
			return
		}

		var payload processSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// No checkout state at all means the client navigated here without
		// going through checkout. That is not a pipeline failure: send them
		// back to build a cart. The pipeline is never entered.
		if payload.Cart == nil || payload.Customer == nil || payload.Payment == nil {
			http.Redirect(w, r, checkoutPath, http.StatusSeeOther)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reference := middleware.IdempotencyKeyFromContext(r.Context())
		outcome := svc.Process(r.Context(), reference, input)

		if outcome.Kind == sale.OutcomeSucceeded {
			responses.WriteSuccessStatus(w, http.StatusCreated, newSaleReceiptResponse(outcome))
			return
		}
		responses.WriteError(r.Context(), logg, w, saleFailureError(outcome))
	}
}

// SaleConfirmation returns the persisted order with items and payments.
func SaleConfirmation(svc saleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		order, err := svc.Confirmation(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderDetailResponse(order))
	}
}

type processSaleRequest struct {
	Cart     *cartSection     `json:"cart"`
	Customer *customerSection `json:"customer"`
	Totals   *totalsSection   `json:"totals"`
	Delivery *deliverySection `json:"delivery"`
	Payment  *paymentSection  `json:"payment"`
}

type cartSection struct {
	Lines []saleLineRequest `json:"lines"`
}

type saleLineRequest struct {
	ItemID    uuid.UUID        `json:"item_id"`
	Kind      string           `json:"kind" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	LineTotal decimal.Decimal  `json:"line_total"`
	External  *externalSection `json:"external,omitempty"`
}

type externalSection struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type customerSection struct {
	ID uuid.UUID `json:"id"`
}

type totalsSection struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

type deliverySection struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	Method       string `json:"method"`
	Notes        string `json:"notes"`
	CustomerType string `json:"customer_type"`
}

type paymentSection struct {
	AccountID uuid.UUID `json:"account_id"`
	Method    string    `json:"method" validate:"required"`
}

func (p processSaleRequest) toInput() (sale.Input, error) {
	method, err := enums.ParsePaymentMethod(p.Payment.Method)
	if err != nil {
		return sale.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	input := sale.Input{
		CustomerID:       p.Customer.ID,
		PaymentAccountID: p.Payment.AccountID,
		PaymentMethod:    method,
	}

	for _, line := range p.Cart.Lines {
		kind, err := enums.ParseCartLineKind(line.Kind)
		if err != nil {
			return sale.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown cart line kind")
		}
		cartLine := sale.CartLine{
			ItemID:    line.ItemID,
			Kind:      kind,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
		if line.External != nil {
			cartLine.External = &sale.ExternalSnapshot{
				Name:        line.External.Name,
				Description: line.External.Description,
				Price:       line.External.Price,
			}
		}
		input.Lines = append(input.Lines, cartLine)
	}

	if p.Totals != nil {
		input.Totals = sale.Totals{
			Subtotal:   p.Totals.Subtotal,
			Tax:        p.Totals.Tax,
			Shipping:   p.Totals.Shipping,
			Total:      p.Totals.Total,
			AmountPaid: p.Totals.AmountPaid,
			BalanceDue: p.Totals.BalanceDue,
		}
	}

	if p.Delivery != nil {
		deliveryMethod := enums.DeliveryMethodPickup
		if p.Delivery.Method != "" {
			deliveryMethod, err = enums.ParseDeliveryMethod(p.Delivery.Method)
			if err != nil {
				return sale.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
			}
		}
		customerType := enums.CustomerTypeRetail
		if p.Delivery.CustomerType != "" {
			customerType, err = enums.ParseCustomerType(p.Delivery.CustomerType)
			if err != nil {
				return sale.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown customer type")
			}
		}
		input.Delivery = sale.DeliveryInfo{
			Address:      p.Delivery.Address,
			City:         p.Delivery.City,
			Method:       deliveryMethod,
			Notes:        p.Delivery.Notes,
			CustomerType: customerType,
		}
	} else {
		input.Delivery = sale.DeliveryInfo{
			Method:       enums.DeliveryMethodPickup,
			CustomerType: enums.CustomerTypeRetail,
		}
	}

	return input, nil
}

// saleFailureError maps a failed outcome onto the API error surface. The
// step label, reason, and resumability travel in the details so the POS
// client can keep the progress label frozen and decide whether to offer a
// retry.
func saleFailureError(outcome sale.Outcome) error {
	details := map[string]any{
		"reason":    string(outcome.Reason),
		"step":      outcome.StepLabel,
		"resumable": outcome.Resumable,
	}

	var code pkgerrors.Code
	switch outcome.Reason {
	case sale.KindValidation:
		code = pkgerrors.CodeValidation
	case sale.KindAuthentication:
		code = pkgerrors.CodeUnauthorized
	default:
		code = pkgerrors.CodeDependency
	}
	return pkgerrors.New(code, outcome.Message).WithDetails(details)
}

type saleReceiptResponse struct {
	OrderID    uuid.UUID     `json:"order_id"`
	CustomerID uuid.UUID     `json:"customer_id"`
	Status     string        `json:"status"`
	Totals     totalsSection `json:"totals"`
	Lines      []receiptLine `json:"lines"`
	Warnings   []string      `json:"warnings,omitempty"`
}

type receiptLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func newSaleReceiptResponse(outcome sale.Outcome) saleReceiptResponse {
	receipt := outcome.Receipt
	resp := saleReceiptResponse{
		OrderID:    receipt.OrderID,
		CustomerID: receipt.CustomerID,
		Status:     string(outcome.Order.Status),
		Totals: totalsSection{
			Subtotal:   receipt.Totals.Subtotal,
			Tax:        receipt.Totals.Tax,
			Shipping:   receipt.Totals.Shipping,
			Total:      receipt.Totals.Total,
			AmountPaid: receipt.Totals.AmountPaid,
			BalanceDue: receipt.Totals.BalanceDue,
		},
		Warnings: receipt.Warnings,
	}
	for _, line := range receipt.Lines {
		resp.Lines = append(resp.Lines, receiptLine{
			ItemID:    line.ItemID,
			Kind:      string(line.Kind),
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return resp
}

type orderDetailResponse struct {
	OrderID        uuid.UUID             `json:"order_id"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	Status         string                `json:"status"`
	PaymentMethod  string                `json:"payment_method"`
	DeliveryMethod string                `json:"delivery_method"`
	Totals         totalsSection         `json:"totals"`
	Items          []orderItemResponse   `json:"items"`
	Payments       []orderPaymentSummary `json:"payments"`
}

type orderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	External  bool            `json:"external"`
	Name      *string         `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ItemTotal decimal.Decimal `json:"item_total"`
}

type orderPaymentSummary struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
}

func newOrderDetailResponse(order *models.SaleOrder) orderDetailResponse {
	resp := orderDetailResponse{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		Status:         string(order.Status),
		PaymentMethod:  string(order.PaymentMethod),
		DeliveryMethod: string(order.DeliveryMethod),
		Totals: totalsSection{
			Subtotal:   order.TotalAmount,
			Tax:        order.TaxAmount,
			Shipping:   order.ShippingCost,
			Total:      order.FinalAmount,
			AmountPaid: order.AmountPaid,
			BalanceDue: order.BalanceDue,
		},
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			External:  item.IsExternalProduct,
			Name:      item.ExternalName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ItemTotal: item.ItemTotal,
		})
	}
	for _, payment := range order.Payments {
		resp.Payments = append(resp.Payments, orderPaymentSummary{
			ID:        payment.ID,
			AccountID: payment.AccountID,
			Amount:    payment.Amount,
			Method:    string(payment.Method),
		})
	}
	return resp
}
