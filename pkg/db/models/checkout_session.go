package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	"github.com/hims91/audio-nature-nexus-backend/pkg/types"
)

// CheckoutSession is the local handoff record for a Stripe Checkout
// Session. It snapshots the cart and the quote the processor was
// handed, so either reconciliation trigger can build the order without
// the originating request. It is not an order; nothing here moves
// money or stock.
type CheckoutSession struct {
	ID              uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeSessionID string                      `gorm:"column:stripe_session_id;uniqueIndex:ux_checkout_sessions_stripe_session_id;not null"`
	CartToken       string                      `gorm:"column:cart_token;not null"`
	Email           string                      `gorm:"column:email;not null"`
	Status          enums.CheckoutSessionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Quote           *types.Quote                `gorm:"column:quote;type:jsonb;serializer:json;not null"`
	Items           []types.QuoteItem           `gorm:"column:items;type:jsonb;serializer:json;not null"`
	ShippingAddress *types.Address              `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
