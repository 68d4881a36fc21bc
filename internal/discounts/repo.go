package discounts

import (
	"context"

	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
)

// Repository defines discount code persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discount repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var row models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = UPPER(?)", code).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// IncrementUsage bumps usage_count only while the limit has headroom.
// The guard lives in the WHERE clause so two concurrent redemptions at
// the boundary resolve to exactly one success.
func (r *repository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE discount_codes
		SET usage_count = usage_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE UPPER(code) = UPPER(?)
			AND is_active = ?
			AND (usage_limit IS NULL OR usage_count < usage_limit)
	`, code, true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
