package models

import (
	"time"

	"gorm.io/datatypes"
)

type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Number          string         `gorm:"size:64;uniqueIndex" json:"number"`
	ClientID        uint           `gorm:"index" json:"client_id"`
	MerchantID      uint           `gorm:"index" json:"merchant_id"`
	Status          string         `gorm:"size:20;default:'pending'" json:"status"`
	TotalCents      int64          `json:"total_cents"`
	Currency        string         `gorm:"size:3;default:'USD'" json:"currency"`
	ShippingAddress datatypes.JSON `json:"shipping_address,omitempty"`
	Items           []OrderItem    `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"index" json:"order_id"`
	ProductID uint   `json:"product_id"`
	Name      string `gorm:"size:200" json:"name"`
	UnitCents int64  `json:"unit_cents"`
	Quantity  int    `json:"quantity"`
}
