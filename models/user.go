package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// User is a back-office login account, not a talent; talents are Person
// rows and do not log in.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName     string         `gorm:"size:200" json:"full_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         UserRole       `gorm:"not null;size:20" json:"role"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) CanExport() bool {
	return u.IsAdmin()
}
