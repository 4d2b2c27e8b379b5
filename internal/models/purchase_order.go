package models

import "time"

type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderDelivered PurchaseOrderStatus = "DELIVERED"
	PurchaseOrderCancelled PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder: tedarikçi sipariş başlığı.
// TotalAmount türetilmiş alandır: her zaman kalemlerin TotalPrice toplamına eşit.
type PurchaseOrder struct {
	ID                   uint                `gorm:"primaryKey"`
	OrderNumber          string              `gorm:"size:30;not null;unique"`
	SupplierID           uint                `gorm:"index;not null"`
	Supplier             Supplier            `gorm:"foreignKey:SupplierID"`
	RestaurantID         uint                `gorm:"index;not null"`
	BranchID             uint                `gorm:"index;not null"`
	Branch               Branch              `gorm:"foreignKey:BranchID"`
	Status               PurchaseOrderStatus `gorm:"size:20;not null;default:'PENDING'"`
	TotalAmount          float64             `gorm:"not null;default:0"`
	OrderDate            time.Time           `gorm:"not null"`
	ExpectedDeliveryDate *time.Time
	Notes                string `gorm:"size:500"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Items []PurchaseOrderItem
}

// PurchaseOrderItem: sipariş kalemi. TotalPrice = Quantity * UnitPrice.
type PurchaseOrderItem struct {
	ID              uint    `gorm:"primaryKey"`
	PurchaseOrderID uint    `gorm:"index;not null"`
	ProductID       uint    `gorm:"not null"`
	Product         Product `gorm:"foreignKey:ProductID"`
	Quantity        float64 `gorm:"not null;check:quantity > 0"`
	UnitPrice       float64 `gorm:"not null"`
	TotalPrice      float64 `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
