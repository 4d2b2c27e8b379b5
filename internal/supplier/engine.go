package supplier

import (
	"errors"

	"restopos-backend/internal/apperr"
	"restopos-backend/internal/models"

	"gorm.io/gorm"
)

// Engine: tedarikçi ve ürün-tedarikçi ilişkilerini yönetir. Temel
// invariant: bir ürünün en fazla bir primary tedarikçisi olabilir.
// "Önce hepsini temizle, sonra birini işaretle" dizisi tek transaction
// içinde koşar; dışarıdan bakan hiçbir okuyucu sıfır ya da iki primary
// göremez.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

type RelationInput struct {
	ProductID           uint
	SupplierID          uint
	IsPrimary           bool
	LastPurchasePrice   float64
	SupplierProductCode string
}

func (e *Engine) CreateRelation(in RelationInput) (*models.ProductSupplier, error) {
	if in.ProductID == 0 || in.SupplierID == 0 {
		return nil, apperr.Validation("product_id ve supplier_id zorunlu")
	}
	if in.LastPurchasePrice < 0 {
		return nil, apperr.Validation("Alış fiyatı negatif olamaz")
	}

	var product models.Product
	if err := e.db.First(&product, "id = ?", in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Ürün bulunamadı (ID: %d)", in.ProductID)
		}
		return nil, apperr.Fatal("ürün sorgulanamadı", err)
	}
	var sup models.Supplier
	if err := e.db.First(&sup, "id = ?", in.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Tedarikçi bulunamadı (ID: %d)", in.SupplierID)
		}
		return nil, apperr.Fatal("tedarikçi sorgulanamadı", err)
	}

	var existing models.ProductSupplier
	err := e.db.First(&existing, "product_id = ? AND supplier_id = ?", in.ProductID, in.SupplierID).Error
	if err == nil {
		return nil, apperr.Conflict("Bu ürün-tedarikçi ilişkisi zaten tanımlı")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Fatal("ilişki sorgulanamadı", err)
	}

	relation := models.ProductSupplier{
		ProductID:           in.ProductID,
		SupplierID:          in.SupplierID,
		IsPrimary:           in.IsPrimary,
		LastPurchasePrice:   in.LastPurchasePrice,
		SupplierProductCode: in.SupplierProductCode,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if in.IsPrimary {
			if err := tx.Model(&models.ProductSupplier{}).
				Where("product_id = ? AND is_primary = ?", in.ProductID, true).
				Update("is_primary", false).Error; err != nil {
				return apperr.Fatal("mevcut primary temizlenemedi", err)
			}
		}
		if err := tx.Create(&relation).Error; err != nil {
			return apperr.Fatal("ilişki oluşturulamadı", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

type UpdateRelationInput struct {
	IsPrimary           *bool
	LastPurchasePrice   *float64
	SupplierProductCode *string
}

func (e *Engine) UpdateRelation(productID, supplierID uint, in UpdateRelationInput) (*models.ProductSupplier, error) {
	var relation models.ProductSupplier
	if err := e.db.First(&relation, "product_id = ? AND supplier_id = ?", productID, supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Ürün-tedarikçi ilişkisi bulunamadı")
		}
		return nil, apperr.Fatal("ilişki sorgulanamadı", err)
	}

	if in.LastPurchasePrice != nil && *in.LastPurchasePrice < 0 {
		return nil, apperr.Validation("Alış fiyatı negatif olamaz")
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if in.IsPrimary != nil && *in.IsPrimary && !relation.IsPrimary {
			// Güncellenen satır hariç diğer primary'leri temizle
			if err := tx.Model(&models.ProductSupplier{}).
				Where("product_id = ? AND supplier_id <> ? AND is_primary = ?", productID, supplierID, true).
				Update("is_primary", false).Error; err != nil {
				return apperr.Fatal("mevcut primary temizlenemedi", err)
			}
		}

		if in.IsPrimary != nil {
			relation.IsPrimary = *in.IsPrimary
		}
		if in.LastPurchasePrice != nil {
			relation.LastPurchasePrice = *in.LastPurchasePrice
		}
		if in.SupplierProductCode != nil {
			relation.SupplierProductCode = *in.SupplierProductCode
		}

		if err := tx.Model(&models.ProductSupplier{}).
			Where("product_id = ? AND supplier_id = ?", productID, supplierID).
			Updates(map[string]any{
				"is_primary":            relation.IsPrimary,
				"last_purchase_price":   relation.LastPurchasePrice,
				"supplier_product_code": relation.SupplierProductCode,
			}).Error; err != nil {
			return apperr.Fatal("ilişki güncellenemedi", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

func (e *Engine) DeleteRelation(productID, supplierID uint) error {
	var relation models.ProductSupplier
	if err := e.db.First(&relation, "product_id = ? AND supplier_id = ?", productID, supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Ürün-tedarikçi ilişkisi bulunamadı")
		}
		return apperr.Fatal("ilişki sorgulanamadı", err)
	}

	if err := e.db.Where("product_id = ? AND supplier_id = ?", productID, supplierID).
		Delete(&models.ProductSupplier{}).Error; err != nil {
		return apperr.Fatal("ilişki silinemedi", err)
	}
	return nil
}

// DeleteSupplier: tedarikçiyi ilişkileri ve geçmiş siparişleriyle birlikte
// siler. Açık (terminal olmayan) siparişi olan tedarikçi silinemez.
func (e *Engine) DeleteSupplier(id uint) error {
	var sup models.Supplier
	if err := e.db.First(&sup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Tedarikçi bulunamadı (ID: %d)", id)
		}
		return apperr.Fatal("tedarikçi sorgulanamadı", err)
	}

	var openOrders int64
	if err := e.db.Model(&models.PurchaseOrder{}).
		Where("supplier_id = ? AND status IN (?)", id,
			[]models.PurchaseOrderStatus{models.PurchaseOrderPending, models.PurchaseOrderConfirmed}).
		Count(&openOrders).Error; err != nil {
		return apperr.Fatal("siparişler sorgulanamadı", err)
	}
	if openOrders > 0 {
		return apperr.Validation("Tedarikçinin %d açık siparişi var, önce kapatılmalı", openOrders)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.PurchaseOrder{}).Select("id").Where("supplier_id = ?", id)
		if err := tx.Where("purchase_order_id IN (?)", orderIDs).
			Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return apperr.Fatal("sipariş kalemleri silinemedi", err)
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.PurchaseOrder{}).Error; err != nil {
			return apperr.Fatal("siparişler silinemedi", err)
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.ProductSupplier{}).Error; err != nil {
			return apperr.Fatal("ürün ilişkileri silinemedi", err)
		}
		if err := tx.Delete(&sup).Error; err != nil {
			return apperr.Fatal("tedarikçi silinemedi", err)
		}
		return nil
	})
}
