package models

import "time"

// Category: ürün kategorisi. Aynı restoran içinde isim tekil olmalı.
type Category struct {
	ID           uint   `gorm:"primaryKey"`
	RestaurantID uint   `gorm:"not null;uniqueIndex:idx_categories_restaurant_name"`
	Name         string `gorm:"size:100;not null;uniqueIndex:idx_categories_restaurant_name"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Products []Product
}
