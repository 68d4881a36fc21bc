package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is an ephemeral cart keyed by an authenticated user id or
// an anonymous session token. Loaded per request; never held in
// process memory between requests.
type CartRecord struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token     string     `gorm:"column:token;uniqueIndex:ux_cart_records_token;not null"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is a cart line. UnitPriceCents is the price captured at
// add-time; quotes re-price against the live catalog and never trust
// this value.
type CartItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID  `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Quantity       int        `gorm:"column:quantity;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
