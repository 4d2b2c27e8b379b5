package models

import "time"

type Product struct {
	ID         uint     `gorm:"primaryKey"`
	CategoryID uint     `gorm:"index;not null"`
	Category   Category `gorm:"foreignKey:CategoryID"`
	Name       string   `gorm:"size:150;not null"`
	Unit       string   `gorm:"size:20;not null"` // kg, adet, porsiyon vs.
	StockCode  string   `gorm:"size:50;index"`    // XLSX sayım eşleştirmesi için
	Price      float64  `gorm:"not null"`
	IsActive   bool     `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	OptionGroups []ProductOptionGroup
}

// ProductOptionGroup: ürün seçenekleri (örn: "Pişirme derecesi", "Ekstra malzeme")
type ProductOptionGroup struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"index;not null"`
	Name      string `gorm:"size:100;not null"`
	MinSelect int    `gorm:"not null;default:0"`
	MaxSelect int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Options []ProductOption `gorm:"foreignKey:OptionGroupID"`
}

type ProductOption struct {
	ID            uint    `gorm:"primaryKey"`
	OptionGroupID uint    `gorm:"index;not null"`
	Name          string  `gorm:"size:100;not null"`
	PriceDelta    float64 `gorm:"not null;default:0"` // seçenek fiyat farkı
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
