package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/latsops/pos-backend/pkg/db/models"
)

// Repository persists sale orders, their line items, and their payments.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateSaleOrder inserts the order header and returns it with its id set.
func (r *Repository) CreateSaleOrder(ctx context.Context, order *models.SaleOrder) (*models.SaleOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrderItems inserts item rows for the order. OrderID is stamped onto
// each row so callers only fill the line payload.
func (r *Repository) CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []models.SaleOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// CountOrderItems reports how many item rows the order already has.
func (r *Repository) CountOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SaleOrderItem{}).
		Where("order_id = ?", orderID).
		Count(&count).
		Error
	return count, err
}

// RecordPayment writes a payment row against the order and credits the
// receiving finance account, atomically. The payment method is taken from
// the account so the ledger reflects where the money actually landed.
func (r *Repository) RecordPayment(ctx context.Context, orderID, accountID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.FinanceAccount
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			return fmt.Errorf("loading payment account: %w", err)
		}
		if !account.Active {
			return fmt.Errorf("payment account %q is inactive", account.Name)
		}

		payment := models.Payment{
			OrderID:   orderID,
			AccountID: accountID,
			Amount:    amount,
			Method:    account.Method,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.FinanceAccount{}).
			Where("id = ?", accountID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).
			Error
	})
}

// PaymentTotal sums the payments already recorded for the order.
func (r *Repository) PaymentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GetOrderDetail loads the order with its items and payments for the
// confirmation read path.
func (r *Repository) GetOrderDetail(ctx context.Context, id uuid.UUID) (*models.SaleOrder, error) {
	var order models.SaleOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListRecent returns the newest orders, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.SaleOrder, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.SaleOrder
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}
