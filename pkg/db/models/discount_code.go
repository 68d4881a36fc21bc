package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
)

// DiscountCode is a persistent promotional code. UsageCount is only
// ever mutated by the conditional increment in the redeem path, inside
// the order-creation transaction.
type DiscountCode struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                 string             `gorm:"column:code;uniqueIndex:ux_discount_codes_code;not null"`
	DiscountType         enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue        int                `gorm:"column:discount_value;not null"`
	MinimumOrderCents    int                `gorm:"column:minimum_order_cents;not null;default:0"`
	MaximumDiscountCents *int               `gorm:"column:maximum_discount_cents"`
	UsageLimit           *int               `gorm:"column:usage_limit"`
	UsageCount           int                `gorm:"column:usage_count;not null;default:0"`
	IsActive             bool               `gorm:"column:is_active;not null;default:true"`
	StartsAt             *time.Time         `gorm:"column:starts_at"`
	ExpiresAt            *time.Time         `gorm:"column:expires_at"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
