package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pagination"
)

// Repository exposes order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	List(ctx context.Context, params ListFilter) ([]models.Order, *pagination.Cursor, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	NextOrderNumber(ctx context.Context) (string, error)
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status            *enums.OrderStatus
	PaymentStatus     *enums.PaymentStatus
	RequiresAttention *bool
	Limit             int
	Cursor            *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("stripe_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params ListFilter) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}
	if params.RequiresAttention != nil {
		query = query.Where("requires_attention = ?", *params.RequiresAttention)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// NextOrderNumber mints a human-readable order number from the counter
// row. Runs inside the order-creation transaction so the row lock
// serializes concurrent checkouts.
func (r *repository) NextOrderNumber(ctx context.Context) (string, error) {
	var value int64
	err := r.db.WithContext(ctx).
		Raw(`UPDATE order_counters SET next_value = next_value + 1 WHERE id = 1 RETURNING next_value - 1`).
		Scan(&value).Error
	if err != nil {
		return "", err
	}
	if value == 0 {
		return "", fmt.Errorf("order counter row missing")
	}
	return fmt.Sprintf("ANN-%06d", value), nil
}
