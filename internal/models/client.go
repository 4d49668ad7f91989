package models

import (
	"time"
)

type ClientRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a marketplace storefront account, distinct from the three
// back-office actor types.
type Client struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	ClientRoleID *uint       `gorm:"column:platform_client_role_id" json:"platform_client_role_id"`
	Role         *ClientRole `gorm:"foreignKey:ClientRoleID" json:"role,omitempty"`
	FirstName    string      `gorm:"size:100" json:"first_name"`
	LastName     string      `gorm:"size:100" json:"last_name"`
	Email        string      `gorm:"uniqueIndex;size:100" json:"email"`
	Password     string      `gorm:"size:255" json:"-"`
	Phone        string      `gorm:"size:30" json:"phone,omitempty"`
	Status       string      `gorm:"size:20;default:'active'" json:"status"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
