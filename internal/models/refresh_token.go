package models

import "time"

// RefreshToken: kullanıcı başına yenileme token'ları. Logout'ta revoke edilir.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Token     string `gorm:"size:255;not null;uniqueIndex"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
