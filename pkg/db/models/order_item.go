package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots a purchased line at order-creation time. Name and
// prices are immutable afterward, independent of later catalog edits.
type OrderItem struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID       *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	ProductName     string     `gorm:"column:product_name;not null"`
	UnitPriceCents  int        `gorm:"column:unit_price_cents;not null"`
	Quantity        int        `gorm:"column:quantity;not null"`
	TotalPriceCents int        `gorm:"column:total_price_cents;not null"`
	StockCommitted  bool       `gorm:"column:stock_committed;not null;default:false"`
	StockNote       *string    `gorm:"column:stock_note"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}
