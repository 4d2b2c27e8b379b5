package purchase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"restopos-backend/internal/apperr"
	"restopos-backend/internal/inventory"
	"restopos-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Engine: satınalma siparişlerini, kalem toplamları ve sipariş toplamı
// her an tutarlı kalacak şekilde yönetir. TotalPrice = Quantity * UnitPrice
// ve TotalAmount = Σ TotalPrice her create/update sonrasında geçerlidir.
type Engine struct {
	db        *gorm.DB
	inventory *inventory.Engine
}

func NewEngine(db *gorm.DB, inv *inventory.Engine) *Engine {
	return &Engine{db: db, inventory: inv}
}

// İzinli durum geçişleri. DELIVERED ve CANCELLED terminaldir; terminal
// durumdan çıkış kasıtlı olarak reddedilir.
var allowedTransitions = map[models.PurchaseOrderStatus][]models.PurchaseOrderStatus{
	models.PurchaseOrderPending:   {models.PurchaseOrderConfirmed, models.PurchaseOrderCancelled},
	models.PurchaseOrderConfirmed: {models.PurchaseOrderDelivered, models.PurchaseOrderCancelled},
	models.PurchaseOrderDelivered: {},
	models.PurchaseOrderCancelled: {},
}

func transitionAllowed(from, to models.PurchaseOrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func isTerminal(status models.PurchaseOrderStatus) bool {
	return len(allowedTransitions[status]) == 0
}

type ItemInput struct {
	ProductID uint
	Quantity  float64
	UnitPrice float64
}

type CreateInput struct {
	SupplierID           uint
	RestaurantID         uint
	BranchID             uint
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Notes                string
	Items                []ItemInput
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperr.Validation("En az bir sipariş kalemi gönderilmeli")
	}
	for _, item := range items {
		if item.ProductID == 0 {
			return apperr.Validation("Her kalem için product_id zorunlu")
		}
		if item.Quantity <= 0 {
			return apperr.Validation("Kalem miktarı 0'dan büyük olmalı (ürün ID: %d)", item.ProductID)
		}
		if item.UnitPrice < 0 {
			return apperr.Validation("Birim fiyat negatif olamaz (ürün ID: %d)", item.ProductID)
		}
	}
	return nil
}

func buildItems(orderID uint, items []ItemInput) ([]models.PurchaseOrderItem, float64) {
	rows := make([]models.PurchaseOrderItem, 0, len(items))
	var total float64
	for _, item := range items {
		linePrice := item.Quantity * item.UnitPrice
		total += linePrice
		rows = append(rows, models.PurchaseOrderItem{
			PurchaseOrderID: orderID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      linePrice,
		})
	}
	return rows, total
}

func newOrderNumber() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}

func (e *Engine) Create(in CreateInput) (*models.PurchaseOrder, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var supplier models.Supplier
	if err := e.db.First(&supplier, "id = ?", in.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Tedarikçi bulunamadı (ID: %d)", in.SupplierID)
		}
		return nil, apperr.Fatal("tedarikçi sorgulanamadı", err)
	}
	var branch models.Branch
	if err := e.db.First(&branch, "id = ?", in.BranchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Şube bulunamadı (ID: %d)", in.BranchID)
		}
		return nil, apperr.Fatal("şube sorgulanamadı", err)
	}

	// Kalemlerdeki ürünler gerçekten var mı?
	productIDs := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	var productCount int64
	if err := e.db.Model(&models.Product{}).Where("id IN (?)", productIDs).Count(&productCount).Error; err != nil {
		return nil, apperr.Fatal("ürünler sorgulanamadı", err)
	}
	if int(productCount) != len(uniqueIDs(productIDs)) {
		return nil, apperr.Validation("Kalemlerde bulunamayan ürün var")
	}

	order := models.PurchaseOrder{
		OrderNumber:          newOrderNumber(),
		SupplierID:           in.SupplierID,
		RestaurantID:         in.RestaurantID,
		BranchID:             in.BranchID,
		Status:               models.PurchaseOrderPending,
		OrderDate:            in.OrderDate,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Fatal("sipariş oluşturulamadı", err)
		}
		items, total := buildItems(order.ID, in.Items)
		if err := tx.Create(&items).Error; err != nil {
			return apperr.Fatal("sipariş kalemleri oluşturulamadı", err)
		}
		order.TotalAmount = total
		order.Items = items
		if err := tx.Model(&models.PurchaseOrder{}).Where("id = ?", order.ID).
			Update("total_amount", total).Error; err != nil {
			return apperr.Fatal("sipariş toplamı yazılamadı", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (e *Engine) Get(id uint) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := e.db.Preload("Items").Preload("Items.Product").Preload("Supplier").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Sipariş bulunamadı (ID: %d)", id)
		}
		return nil, apperr.Fatal("sipariş sorgulanamadı", err)
	}
	return &order, nil
}

type UpdateInput struct {
	Notes                *string
	ExpectedDeliveryDate *time.Time
	Items                []ItemInput // nil ise kalemlere dokunulmaz
}

// Update: kalem listesi verilmişse eski kalemler topluca silinip yenileri
// yazılır ve TotalAmount yeniden hesaplanır; hepsi tek transaction.
// Terminal durumdaki siparişin kalemleri değiştirilemez.
func (e *Engine) Update(id uint, in UpdateInput) (*models.PurchaseOrder, error) {
	order, err := e.Get(id)
	if err != nil {
		return nil, err
	}

	if in.Items != nil {
		if isTerminal(order.Status) {
			return nil, apperr.Validation("%s durumundaki siparişin kalemleri değiştirilemez", order.Status)
		}
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		if in.ExpectedDeliveryDate != nil {
			order.ExpectedDeliveryDate = in.ExpectedDeliveryDate
		}

		if in.Items != nil {
			if err := tx.Where("purchase_order_id = ?", order.ID).
				Delete(&models.PurchaseOrderItem{}).Error; err != nil {
				return apperr.Fatal("eski kalemler silinemedi", err)
			}
			items, total := buildItems(order.ID, in.Items)
			if err := tx.Create(&items).Error; err != nil {
				return apperr.Fatal("yeni kalemler oluşturulamadı", err)
			}
			order.Items = items
			order.TotalAmount = total
		}

		if err := tx.Save(order).Error; err != nil {
			return apperr.Fatal("sipariş güncellenemedi", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus: durum geçişini uygular. Terminal durumdan (DELIVERED,
// CANCELLED) çıkış reddedilir. DELIVERED geçişi sipariş kalemlerini şube
// stoğuna işler ve tedarikçi son alış fiyatlarını tazeler.
func (e *Engine) UpdateStatus(id uint, newStatus models.PurchaseOrderStatus, changedBy uint) (*models.PurchaseOrder, error) {
	switch newStatus {
	case models.PurchaseOrderPending, models.PurchaseOrderConfirmed,
		models.PurchaseOrderDelivered, models.PurchaseOrderCancelled:
	default:
		return nil, apperr.Validation("Geçersiz sipariş durumu: %s", newStatus)
	}

	order, err := e.Get(id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, newStatus) {
		return nil, apperr.Validation("Durum geçişi geçersiz: %s -> %s", order.Status, newStatus)
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PurchaseOrder{}).Where("id = ?", order.ID).
			Update("status", newStatus).Error; err != nil {
			return apperr.Fatal("sipariş durumu güncellenemedi", err)
		}
		order.Status = newStatus

		if newStatus != models.PurchaseOrderDelivered {
			return nil
		}

		// Teslimat: kalemleri stoğa gir, son alış fiyatını güncelle
		for _, item := range order.Items {
			note := fmt.Sprintf("Satınalma %s", order.OrderNumber)
			if _, err := e.inventory.ReceiveTx(tx, order.BranchID, item.ProductID, item.Quantity, changedBy, note); err != nil {
				return err
			}
			if err := tx.Model(&models.ProductSupplier{}).
				Where("product_id = ? AND supplier_id = ?", item.ProductID, order.SupplierID).
				Update("last_purchase_price", item.UnitPrice).Error; err != nil {
				return apperr.Fatal("son alış fiyatı güncellenemedi", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete: önce kalemler, sonra sipariş; tek transaction.
func (e *Engine) Delete(id uint) error {
	var order models.PurchaseOrder
	if err := e.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Sipariş bulunamadı (ID: %d)", id)
		}
		return apperr.Fatal("sipariş sorgulanamadı", err)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", order.ID).
			Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return apperr.Fatal("sipariş kalemleri silinemedi", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return apperr.Fatal("sipariş silinemedi", err)
		}
		return nil
	})
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
