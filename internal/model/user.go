package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User is a store employee. Deleting a user keeps their ledger entries and orders with a null user.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone       string     `gorm:"type:varchar(20)" json:"phone"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role        string     `gorm:"type:varchar(20);not null" json:"role"` // admin, manager, staff
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleStaff
}
