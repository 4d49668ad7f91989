package models

import (
	"time"

	"gorm.io/gorm"
)

type Merchant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100" json:"email"`
	Phone     string         `gorm:"size:30" json:"phone,omitempty"`
	Status    string         `gorm:"size:20;default:'active'" json:"status"`
	Branches  []Branch       `gorm:"foreignKey:MerchantID" json:"branches,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Branch struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MerchantID uint      `gorm:"index" json:"merchant_id"`
	Name       string    `gorm:"size:150" json:"name"`
	Address    string    `json:"address,omitempty"`
	Phone      string    `gorm:"size:30" json:"phone,omitempty"`
	Status     string    `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type MerchantUser struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	MerchantID   uint        `gorm:"index" json:"merchant_id"`
	Merchant     *Merchant   `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	BranchID     *uint       `json:"branch_id"`
	FirstName    string      `gorm:"size:100" json:"first_name"`
	LastName     string      `gorm:"size:100" json:"last_name"`
	Email        string      `gorm:"uniqueIndex;size:100" json:"email"`
	Password     string      `gorm:"size:255" json:"-"`
	Phone        string      `gorm:"size:30" json:"phone,omitempty"`
	BranchRoleID *uint       `json:"branch_role_id"`
	BranchRole   *BranchRole `gorm:"foreignKey:BranchRoleID" json:"branch_role,omitempty"`
	Status       string      `gorm:"size:20;default:'active'" json:"status"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Permission is the merchant-staff permission catalog, keyed
// "<action>-<resource>" (e.g. "update-product").
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	KeyName     string    `gorm:"size:100;uniqueIndex" json:"key_name"`
	Description string    `json:"description"`
	GroupName   string    `gorm:"size:50" json:"group_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type BranchRole struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	MerchantID  uint         `gorm:"index" json:"merchant_id"`
	Name        string       `gorm:"size:100" json:"name"`
	Description string       `json:"description"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"`
	Permissions []Permission `gorm:"many2many:branch_role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
