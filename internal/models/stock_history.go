package models

import "time"

type StockMovementType string

const (
	StockMovementIn         StockMovementType = "IN"
	StockMovementOut        StockMovementType = "OUT"
	StockMovementAdjustment StockMovementType = "ADJUSTMENT"
)

// StockHistory: stok hareket günlüğü. Sadece eklenir, asla güncellenmez.
// Quantity her zaman delta'dır (ADJUSTMENT'ta eski-yeni farkı).
type StockHistory struct {
	ID        uint              `gorm:"primaryKey"`
	StockID   uint              `gorm:"index;not null"`
	Type      StockMovementType `gorm:"size:20;not null"`
	Quantity  float64           `gorm:"not null"`
	Note      string            `gorm:"size:255"` // Opsiyonel not (ör: "Transfer #12 -> Kadıköy")
	CreatedBy uint              `gorm:"not null"`
	CreatedAt time.Time
}
