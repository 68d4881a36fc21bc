package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryRecord tracks on-hand stock per product/variant. Mutated by
// the inventory guard at order confirmation only; quote and cart stages
// never touch it.
type InventoryRecord struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_inventory_product_variant"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid;uniqueIndex:ux_inventory_product_variant"`
	QuantityOnHand int        `gorm:"column:quantity_on_hand;not null;default:0"`
	TrackInventory bool       `gorm:"column:track_inventory;not null;default:true"`
	AllowBackorder bool       `gorm:"column:allow_backorders;not null;default:false"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
