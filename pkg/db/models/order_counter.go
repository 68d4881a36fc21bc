package models

// OrderCounter is a single-row sequence used to mint human-readable
// order numbers inside the order-creation transaction.
type OrderCounter struct {
	ID        int   `gorm:"column:id;primaryKey"`
	NextValue int64 `gorm:"column:next_value;not null;default:1000"`
}
