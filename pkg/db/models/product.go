package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the slice of the catalog the pricing engine needs: the
// authoritative price and enough naming to snapshot onto order items.
// Catalog CRUD lives outside this engine.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	PriceCents  int              `gorm:"column:price_cents;not null"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	WeightGrams int              `gorm:"column:weight_grams;not null;default:0"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant optionally refines a product's price.
type ProductVariant struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	PriceCents *int      `gorm:"column:price_cents"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
