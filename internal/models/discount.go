package models

import "time"

type DiscountType string

const (
	DiscountPercentage   DiscountType = "PERCENTAGE"
	DiscountFixedAmount  DiscountType = "FIXED_AMOUNT"
	DiscountBuyXGetYFree DiscountType = "BUY_X_GET_Y_FREE"
)

// Discount: sipariş veya sipariş kalemine uygulanan indirim.
// OrderID ve OrderItemID'den en az biri dolu olmalı; kontrol handler'da.
type Discount struct {
	ID             uint         `gorm:"primaryKey"`
	OrderID        *uint        `gorm:"index"`
	OrderItemID    *uint        `gorm:"index"`
	DiscountType   DiscountType `gorm:"size:30;not null"`
	DiscountAmount float64      `gorm:"not null"` // yüzde tipinde 0-100 arası
	Description    string       `gorm:"size:255"`
	CreatedBy      uint         `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
