package models

import (
	"time"
)

type Invoice struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	PersonID      uint          `gorm:"not null;index" json:"person_id"`
	Person        Person        `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Company       string        `gorm:"size:100" json:"company"`
	Address       string        `json:"address"`
	Description   string        `json:"description"`
	Date          time.Time     `gorm:"not null;type:date" json:"date"`
	ReceiptNumber string        `gorm:"size:50" json:"receipt_number"`
	TotalAmount   float64       `gorm:"not null;default:0" json:"total_amount"`
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"invoice_id"`
	Description string  `gorm:"size:255" json:"description"`
	Hours       float64 `gorm:"not null;default:0" json:"hours"`
	Rate        float64 `gorm:"not null;default:0" json:"rate"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`
}
