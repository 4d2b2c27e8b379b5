package models

import "time"

// Permission: atanabilir yetki tanımı (örn: "stock.transfer", "purchase.create")
type Permission struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserPermission: kullanıcı-yetki bağlantısı, bileşik anahtar
type UserPermission struct {
	UserID       uint `gorm:"primaryKey"`
	PermissionID uint `gorm:"primaryKey"`
	CreatedAt    time.Time
}

// UserBranch: kullanıcının erişebildiği ek şubeler, bileşik anahtar
type UserBranch struct {
	UserID    uint `gorm:"primaryKey"`
	BranchID  uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
