package models

import "time"

// Recipe: satış ürününün hammadde reçetesi
type Recipe struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []RecipeItem
}

type RecipeItem struct {
	ID                  uint    `gorm:"primaryKey"`
	RecipeID            uint    `gorm:"index;not null"`
	IngredientProductID uint    `gorm:"not null"` // hammadde olarak kullanılan ürün
	Quantity            float64 `gorm:"not null"`
	Unit                string  `gorm:"size:20;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
