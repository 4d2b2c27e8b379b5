package models

import "time"

type AccountTransactionType string

const (
	AccountTransactionCredit AccountTransactionType = "CREDIT"
	AccountTransactionDebit  AccountTransactionType = "DEBIT"
)

// AccountTransaction: restoran cari hareketi (tahsilat/ödeme)
type AccountTransaction struct {
	ID           uint                   `gorm:"primaryKey"`
	RestaurantID uint                   `gorm:"index;not null"`
	BranchID     *uint                  `gorm:"index"`
	OrderID      *uint                  `gorm:"index"` // satıştan gelen tahsilat ise
	Type         AccountTransactionType `gorm:"size:10;not null"`
	Amount       float64                `gorm:"not null"`
	Description  string                 `gorm:"size:255"`
	Date         time.Time              `gorm:"index;not null"`
	CreatedBy    uint                   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
