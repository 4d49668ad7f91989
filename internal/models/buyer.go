package models

import (
	"time"
)

type Buyer struct {
	ID                         uint      `gorm:"primaryKey" json:"id"`
	CompanyName                string    `gorm:"size:150" json:"company_name"`
	BusinessRegistrationNumber string    `gorm:"size:100" json:"business_registration_number,omitempty"`
	TaxID                      string    `gorm:"size:100" json:"tax_id,omitempty"`
	Email                      string    `gorm:"uniqueIndex;size:100" json:"email"`
	Phone                      string    `gorm:"size:30" json:"phone,omitempty"`
	Status                     string    `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

type BuyerRole struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	BuyerID     uint              `gorm:"index" json:"buyer_id"`
	Name        string            `gorm:"size:100" json:"name"`
	Description string            `json:"description"`
	IsSystem    bool              `gorm:"default:false" json:"is_system"`
	Permissions []BuyerPermission `gorm:"many2many:buyer_role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type BuyerPermission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Module      string    `gorm:"size:50" json:"module"`
	CreatedAt   time.Time `json:"created_at"`
}

type BuyerUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	BuyerID      uint       `gorm:"index" json:"buyer_id"`
	Buyer        *Buyer     `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	FirstName    string     `gorm:"size:100" json:"first_name"`
	LastName     string     `gorm:"size:100" json:"last_name"`
	Email        string     `gorm:"uniqueIndex;size:100" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255" json:"-"`
	Phone        string     `gorm:"size:30" json:"phone,omitempty"`
	RoleID       *uint      `json:"role_id"`
	Role         *BuyerRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Status       string     `gorm:"size:20;default:'active'" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
