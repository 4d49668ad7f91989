package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MerchantID  uint      `gorm:"index" json:"merchant_id"`
	Name        string    `gorm:"size:150" json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	MerchantID  uint           `gorm:"index" json:"merchant_id"`
	BranchID    *uint          `json:"branch_id"`
	Name        string         `gorm:"size:200" json:"name"`
	SKU         string         `gorm:"size:100;index" json:"sku,omitempty"`
	Description string         `json:"description,omitempty"`
	PriceCents  int64          `json:"price_cents"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	Stock       int            `json:"stock"`
	Status      string         `gorm:"size:20;default:'active'" json:"status"`
	Images      []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Categories  []Category     `gorm:"many2many:product_categories" json:"categories,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index" json:"product_id"`
	URL       string    `gorm:"size:500" json:"url"`
	AltText   string    `gorm:"size:200" json:"alt_text,omitempty"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
