package models

import "time"

type Restaurant struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null;unique"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Branches []Branch
	Users    []User
}

// RestaurantSetting: restoran geneli ayarlar (para birimi, vergi vs.)
type RestaurantSetting struct {
	ID           uint   `gorm:"primaryKey"`
	RestaurantID uint   `gorm:"uniqueIndex;not null"`
	Currency     string `gorm:"size:10;not null;default:'TRY'"`
	TaxRate      float64
	Timezone     string `gorm:"size:50"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
