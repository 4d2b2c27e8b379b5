package models

import "time"

// Stock: bir ürünün bir şubedeki stok kaydı. (product_id, branch_id) tekil.
// Quantity hiçbir mutasyonda negatife düşmemeli; kontrol inventory engine'de.
type Stock struct {
	ID                uint    `gorm:"primaryKey"`
	ProductID         uint    `gorm:"not null;uniqueIndex:idx_stocks_product_branch"`
	Product           Product `gorm:"foreignKey:ProductID"`
	BranchID          uint    `gorm:"not null;uniqueIndex:idx_stocks_product_branch"`
	Branch            Branch  `gorm:"foreignKey:BranchID"`
	Quantity          float64 `gorm:"not null;default:0"`
	LowStockThreshold float64 `gorm:"not null;default:0"`
	ExpirationDate    *time.Time
	LastStockUpdate   time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
