package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
)

// Repository persists the local handoff records for Stripe Checkout
// Sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.CheckoutSession) error
	FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CheckoutSessionStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout session repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.CheckoutSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", stripeSessionID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CheckoutSessionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CheckoutSession{}).
		Where("id = ?", id).
		Update("status", status).Error
}
