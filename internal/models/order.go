package models

import "time"

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order: satış siparişi (adisyon)
type Order struct {
	ID           uint        `gorm:"primaryKey"`
	RestaurantID uint        `gorm:"index;not null"`
	BranchID     uint        `gorm:"index;not null"`
	UserID       uint        `gorm:"not null"` // siparişi açan kullanıcı
	TableNo      string      `gorm:"size:20"`
	Status       OrderStatus `gorm:"size:20;not null;default:'OPEN'"`
	TotalAmount  float64     `gorm:"not null;default:0"`
	OrderDate    time.Time   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []OrderItem
}

type OrderItem struct {
	ID         uint    `gorm:"primaryKey"`
	OrderID    uint    `gorm:"index;not null"`
	ProductID  uint    `gorm:"not null"`
	Product    Product `gorm:"foreignKey:ProductID"`
	Quantity   float64 `gorm:"not null"`
	UnitPrice  float64 `gorm:"not null"` // sipariş anındaki fiyat
	TotalPrice float64 `gorm:"not null"`
	Note       string  `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
