package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	"github.com/hims91/audio-nature-nexus-backend/pkg/types"
)

// Order is the system of record for a completed checkout. Money fields
// never change after creation; only status, payment_status and the
// fulfillment timestamps mutate. StripeSessionID carries the unique
// index that makes creation idempotent across the webhook/poll race.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string              `gorm:"column:order_number;uniqueIndex:ux_orders_order_number;not null"`
	Email             string              `gorm:"column:email;not null"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Currency          enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents     int                 `gorm:"column:subtotal_cents;not null"`
	ShippingCents     int                 `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents          int                 `gorm:"column:tax_cents;not null;default:0"`
	DiscountCents     int                 `gorm:"column:discount_cents;not null;default:0"`
	TotalCents        int                 `gorm:"column:total_cents;not null"`
	DiscountCode      *string             `gorm:"column:discount_code"`
	TaxLines          []types.TaxLine     `gorm:"column:tax_lines;type:jsonb;serializer:json"`
	ShippingAddress   *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	StripeSessionID   string              `gorm:"column:stripe_session_id;uniqueIndex:ux_orders_stripe_session_id;not null"`
	RequiresAttention bool                `gorm:"column:requires_attention;not null;default:false"`
	AttentionNote     *string             `gorm:"column:attention_note"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	ShippedAt         *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time          `gorm:"column:delivered_at"`
	CancelledAt       *time.Time          `gorm:"column:cancelled_at"`
	RefundedAt        *time.Time          `gorm:"column:refunded_at"`
}
