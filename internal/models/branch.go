package models

import "time"

type Branch struct {
	ID           uint       `gorm:"primaryKey"`
	RestaurantID uint       `gorm:"index;not null"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID"`
	Name         string     `gorm:"size:100;not null"`
	Address      string     `gorm:"size:255"`
	Phone        string     `gorm:"size:50"` // Opsiyonel telefon
	IsMainBranch bool       `gorm:"not null;default:false"` // Restoran başına en fazla bir tane true
	IsActive     bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Users []User
}

// BranchSetting: şubeye özel ayarlar
type BranchSetting struct {
	ID           uint   `gorm:"primaryKey"`
	BranchID     uint   `gorm:"uniqueIndex;not null"`
	OpeningTime  string `gorm:"size:5"` // "09:00"
	ClosingTime  string `gorm:"size:5"` // "23:00"
	OrderPrefix  string `gorm:"size:10"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
