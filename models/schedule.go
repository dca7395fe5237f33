package models

import (
	"fmt"
	"math"
	"time"
)

type Role string

const (
	RoleHost     Role = "host"
	RoleOperator Role = "operator"
)

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleOperator
}

type ModificationStatus string

const (
	StatusNormal    ModificationStatus = "normal"
	StatusLate      ModificationStatus = "late"
	StatusCancelled ModificationStatus = "cancelled"
	// StatusOther exists in stored data from earlier imports; no operation
	// assigns it.
	StatusOther ModificationStatus = "other"
)

// Schedule is one room/time staffing assignment for a person, optionally
// tied to a sponsoring brand.
type Schedule struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Date               time.Time          `gorm:"not null;type:date;index" json:"date"`
	PersonID           uint               `gorm:"not null;index" json:"person_id"`
	Person             Person             `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Role               Role               `gorm:"not null;size:20" json:"role"`
	StartTime          string             `gorm:"not null;size:8" json:"start_time"`
	EndTime            string             `gorm:"not null;size:8" json:"end_time"`
	BrandID            *uint              `gorm:"index" json:"brand_id"`
	Brand              *Brand             `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL" json:"brand,omitempty"`
	Room               int                `gorm:"not null;default:0" json:"room"`
	IsLateCancellation bool               `gorm:"not null;default:false" json:"is_late_cancellation"`
	LateHours          float64            `gorm:"not null;default:0" json:"late_hours"`
	ModificationStatus ModificationStatus `gorm:"not null;size:20;default:normal" json:"modification_status"`
	ModificationReason string             `json:"modification_reason"`
	ModifiedAt         *time.Time         `json:"modified_at"`
}

// clockMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
func clockMinutes(s string) (float64, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return float64(h)*60 + float64(m) + float64(sec)/60, nil
}

// Duration returns the scheduled hours, derived from the time-of-day
// components only, rounded to 2 decimals. Unparsable times count as 0.
func (s *Schedule) Duration() float64 {
	start, err := clockMinutes(s.StartTime)
	if err != nil {
		return 0
	}
	end, err := clockMinutes(s.EndTime)
	if err != nil {
		return 0
	}
	return Round2((end - start) / 60)
}

// StartsAt combines the schedule date with its start time-of-day in the
// local timezone.
func (s *Schedule) StartsAt() time.Time {
	mins, err := clockMinutes(s.StartTime)
	if err != nil {
		mins = 0
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local).
		Add(time.Duration(mins * float64(time.Minute)))
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
