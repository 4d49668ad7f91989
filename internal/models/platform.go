package models

import (
	"time"
)

type PlatformAdmin struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	FirstName      string        `gorm:"size:100" json:"first_name"`
	LastName       string        `gorm:"size:100" json:"last_name"`
	Email          string        `gorm:"uniqueIndex;size:100" json:"email"`
	Password       string        `gorm:"size:255" json:"-"`
	Phone          string        `gorm:"size:30" json:"phone,omitempty"`
	Status         string        `gorm:"size:20;default:'active'" json:"status"`
	PlatformRoleID *uint         `json:"platform_role_id"`
	PlatformRole   *PlatformRole `gorm:"foreignKey:PlatformRoleID" json:"platform_role,omitempty"`
	LastLoginAt    *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type PlatformRole struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Name        string               `gorm:"size:100;uniqueIndex" json:"name"`
	Description string               `json:"description"`
	Permissions []PlatformPermission `gorm:"many2many:platform_role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type PlatformPermission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	KeyName     string    `gorm:"size:100;uniqueIndex" json:"key_name"`
	Description string    `json:"description"`
	GroupName   string    `gorm:"size:50" json:"group_name"`
	CreatedAt   time.Time `json:"created_at"`
}
