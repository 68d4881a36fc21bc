package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an operator-facing alert row, e.g. an order flagged
// for manual inventory reconciliation.
type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	Kind      string     `gorm:"column:kind;not null"`
	Message   string     `gorm:"column:message;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
