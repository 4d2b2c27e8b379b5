package models

import "time"

type Supplier struct {
	ID           uint   `gorm:"primaryKey"`
	RestaurantID uint   `gorm:"index;not null"`
	Name         string `gorm:"size:200;not null"`
	ContactName  string `gorm:"size:100"`
	Phone        string `gorm:"size:50"`
	Email        string `gorm:"size:100"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
