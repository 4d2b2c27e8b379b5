package models

import "time"

type UserRole string

const (
	RoleSuperAdmin      UserRole = "super_admin"
	RoleRestaurantAdmin UserRole = "restaurant_admin"
	RoleBranchUser      UserRole = "branch_user"
)

type User struct {
	ID           uint  `gorm:"primaryKey"`
	RestaurantID *uint `gorm:"index"` // super_admin için nil
	BranchID     *uint
	Branch       *Branch
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	IsActive     bool     `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
