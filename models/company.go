package models

import (
	"time"
)

// Company is a lookup table for billing addresses. Invoice keeps a
// denormalized company name instead of a foreign key.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null;size:200" json:"name"`
	Address   string    `json:"address"`
}
