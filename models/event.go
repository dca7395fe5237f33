package models

import (
	"time"
)

type EventKind string

const (
	EventLate   EventKind = "late"
	EventCancel EventKind = "cancel"
)

// ScheduleEvent is an append-only record of a late/cancel transition.
// Person.LateCount and Person.CancelCount are maintained alongside these
// rows in the same transaction; the events are the auditable history from
// which the counters can be rebuilt.
type ScheduleEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Kind       EventKind `gorm:"not null;size:20;index" json:"kind"`
	ScheduleID uint      `gorm:"not null;index" json:"schedule_id"`
	Schedule   Schedule  `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	PersonID   uint      `gorm:"not null;index" json:"person_id"`
	Person     Person    `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Reason     string    `json:"reason"`
	LateHours  float64   `gorm:"not null;default:0" json:"late_hours"`
}
