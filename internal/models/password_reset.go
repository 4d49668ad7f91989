package models

import (
	"time"
)

// PasswordResetToken stores only the sha256 of the emailed token. A row is
// consumable while used_at is null and expires_at is in the future.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey"`
	ActorType string     `gorm:"size:20;index:idx_reset_actor;not null"`
	ActorID   uint       `gorm:"index:idx_reset_actor;not null"`
	Email     string     `gorm:"size:100;not null"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time `gorm:"index"`
	CreatedAt time.Time
}
