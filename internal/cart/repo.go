package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
)

// Repository exposes cart persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByToken(ctx context.Context, token string) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) error
	UpsertItem(ctx context.Context, cartID uuid.UUID, item models.CartItem) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByToken(ctx context.Context, token string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("token = ?", token).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.CartRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// UpsertItem adds a line or bumps the quantity of an existing one. The
// quantity change is a single UPDATE so two tabs adding the same
// product do not lose an increment.
func (r *repository) UpsertItem(ctx context.Context, cartID uuid.UUID, item models.CartItem) error {
	query := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, item.ProductID)
	if item.VariantID != nil {
		query = query.Where("variant_id = ?", *item.VariantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	res := query.Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	item.CartID = cartID
	return r.db.WithContext(ctx).Create(&item).Error
}

func (r *repository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
