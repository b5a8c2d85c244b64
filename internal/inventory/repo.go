package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/latsops/pos-backend/pkg/db/models"
)

// Repository owns tracked stock for product variants.
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

// FindVariant loads a variant by id.
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// Decrement reduces the variant's stock by qty. The guard in the WHERE
// clause keeps stock from going negative under concurrent sales; zero rows
// affected means either an unknown variant or not enough stock, and the
// error says which.
func (r *Repository) Decrement(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND stock_qty >= ?", variantID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	variant, err := r.FindVariant(ctx, variantID)
	if err != nil {
		return fmt.Errorf("variant %s not found", variantID)
	}
	return fmt.Errorf("insufficient stock for %q: have %d, need %d", variant.Name, variant.StockQty, qty)
}
