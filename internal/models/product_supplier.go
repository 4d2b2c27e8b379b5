package models

import "time"

// ProductSupplier: ürün-tedarikçi ilişkisi, bileşik anahtar (product_id, supplier_id).
// Invariant: bir ürün için en fazla bir satırda is_primary = true olabilir;
// kontrol supplier engine'de tek transaction içinde yapılır.
type ProductSupplier struct {
	ProductID           uint    `gorm:"primaryKey"`
	SupplierID          uint    `gorm:"primaryKey"`
	IsPrimary           bool    `gorm:"not null;default:false"`
	LastPurchasePrice   float64 `gorm:"not null;default:0"`
	SupplierProductCode string  `gorm:"size:50"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
