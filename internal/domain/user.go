package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleManager   UserRole = "manager"
	UserRoleAttendant UserRole = "attendant"
)

// User is read here only to resolve actors; user management lives elsewhere.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Role      UserRole  `json:"role"`
	StationID string    `json:"station_id,omitempty" gorm:"index"`
	Status    string    `json:"status"` // Active, Inactive
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
