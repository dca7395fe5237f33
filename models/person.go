package models

import (
	"time"

	"gorm.io/gorm"
)

type Person struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null;size:100" json:"name"`
	NickName    string         `gorm:"size:100" json:"nick_name"`
	Bank        string         `gorm:"size:100" json:"bank"`
	Account     string         `gorm:"size:20" json:"account"`
	SortCode    string         `gorm:"size:20" json:"sort_code"`
	BankName    string         `gorm:"size:100" json:"bank_name"`
	LateCount   int            `gorm:"not null;default:0" json:"late_count"`
	CancelCount int            `gorm:"not null;default:0" json:"cancel_count"`
	Schedules   []Schedule     `gorm:"foreignKey:PersonID" json:"schedules,omitempty"`
	Invoices    []Invoice      `gorm:"foreignKey:PersonID" json:"invoices,omitempty"`
}

func (p *Person) DisplayName() string {
	if p.NickName != "" {
		return p.NickName
	}
	return p.Name
}
