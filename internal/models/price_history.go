package models

import "time"

// PriceHistory: ürün fiyat değişiklik günlüğü. Sadece eklenir.
type PriceHistory struct {
	ID        uint    `gorm:"primaryKey"`
	ProductID uint    `gorm:"index;not null"`
	OldPrice  float64 `gorm:"not null"`
	NewPrice  float64 `gorm:"not null"`
	ChangedBy uint    `gorm:"not null"`
	CreatedAt time.Time
}
