package models

import (
	"time"
)

// Brand is a sponsorship deal: a budgeted number of cooperation hours over
// a date window, with an optional responsible person.
type Brand struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Name          string     `gorm:"not null;size:100" json:"name"`
	Color         string     `gorm:"not null;size:7;default:#000000" json:"color"`
	ResponsibleID *uint      `gorm:"index" json:"responsible_id"`
	Responsible   *Person    `gorm:"foreignKey:ResponsibleID;constraint:OnDelete:SET NULL" json:"responsible,omitempty"`
	CoopHours     float64    `gorm:"not null;default:0" json:"coop_hours"`
	StartDate     time.Time  `gorm:"not null;type:date" json:"start_date"`
	EndDate       time.Time  `gorm:"not null;type:date" json:"end_date"`
	Schedules     []Schedule `gorm:"foreignKey:BrandID" json:"schedules,omitempty"`
}
