package inventory

import (
	"errors"
	"fmt"
	"time"

	"restopos-backend/internal/apperr"
	"restopos-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine: şube bazlı stok miktarlarını üç mutasyon yolu altında tutarlı
// tutar: doğrudan hareket (IN/OUT/ADJUSTMENT), şubeler arası transfer ve
// sayım mutabakatı. Hiçbir yol stok miktarını negatife düşüremez ve her
// mutasyon aynı transaction içinde bir StockHistory satırı üretir.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// lockForUpdate: oku-kontrol et-yaz dizisi boyunca satır kilidi.
// SQLite (testler) FOR UPDATE desteklemez, orada transaction yeterli.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// AdjustStock: tek stok kaydına hareket uygular. IN ekler, OUT düşer,
// ADJUSTMENT mutlak değeri yazar. Sonuç negatif olacaksa hiçbir şey
// yazılmadan Validation hatası döner. History kaydındaki Quantity her
// zaman imzalı delta'dır.
func (e *Engine) AdjustStock(stockID uint, movement models.StockMovementType, quantity float64, createdBy uint, note string) (*models.Stock, error) {
	switch movement {
	case models.StockMovementIn, models.StockMovementOut:
		if quantity <= 0 {
			return nil, apperr.Validation("quantity 0'dan büyük olmalı")
		}
	case models.StockMovementAdjustment:
		if quantity < 0 {
			return nil, apperr.Validation("sayım miktarı negatif olamaz")
		}
	default:
		return nil, apperr.Validation("Geçersiz hareket tipi: %s", movement)
	}

	var stock models.Stock
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&stock, "id = ?", stockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Stok kaydı bulunamadı (ID: %d)", stockID)
			}
			return apperr.Fatal("stok sorgulanamadı", err)
		}

		var newQuantity float64
		switch movement {
		case models.StockMovementIn:
			newQuantity = stock.Quantity + quantity
		case models.StockMovementOut:
			newQuantity = stock.Quantity - quantity
			if newQuantity < 0 {
				return apperr.Validation("Yetersiz stok: mevcut %.2f, istenen %.2f", stock.Quantity, quantity)
			}
		case models.StockMovementAdjustment:
			newQuantity = quantity
		}

		delta := newQuantity - stock.Quantity
		stock.Quantity = newQuantity
		stock.LastStockUpdate = time.Now()
		if err := tx.Save(&stock).Error; err != nil {
			return apperr.Fatal("stok güncellenemedi", err)
		}

		history := models.StockHistory{
			StockID:   stock.ID,
			Type:      movement,
			Quantity:  delta,
			Note:      note,
			CreatedBy: createdBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return apperr.Fatal("stok hareketi kaydedilemedi", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// TransferResult: transfer sonrası iki stok kaydının son hali
type TransferResult struct {
	Source      models.Stock
	Destination models.Stock
}

// Transfer: bir ürünü kaynak şubeden hedef şubeye taşır. Kaynak düşer,
// hedef artar (hedefte stok kaydı yoksa oluşturulur); iki hareket kaydı
// (kaynakta OUT, hedefte IN) aynı transaction'da yazılır. Miktar
// korunumu: iki şubenin toplamı değişmez.
func (e *Engine) Transfer(fromBranchID, toBranchID, productID uint, quantity float64, createdBy uint) (*TransferResult, error) {
	if fromBranchID == toBranchID {
		return nil, apperr.Validation("Kaynak ve hedef şube aynı olamaz")
	}
	if quantity <= 0 {
		return nil, apperr.Validation("Transfer miktarı 0'dan büyük olmalı")
	}

	var fromBranch, toBranch models.Branch
	if err := e.db.First(&fromBranch, "id = ?", fromBranchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Kaynak şube bulunamadı (ID: %d)", fromBranchID)
		}
		return nil, apperr.Fatal("kaynak şube sorgulanamadı", err)
	}
	if err := e.db.First(&toBranch, "id = ?", toBranchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Hedef şube bulunamadı (ID: %d)", toBranchID)
		}
		return nil, apperr.Fatal("hedef şube sorgulanamadı", err)
	}

	var result TransferResult
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var source models.Stock
		err := lockForUpdate(tx).
			First(&source, "product_id = ? AND branch_id = ?", productID, fromBranchID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("Kaynak şubede bu ürün için stok kaydı yok")
			}
			return apperr.Fatal("kaynak stok sorgulanamadı", err)
		}
		if source.Quantity < quantity {
			return apperr.Validation("Yetersiz stok: mevcut %.2f, istenen %.2f", source.Quantity, quantity)
		}

		now := time.Now()
		source.Quantity -= quantity
		source.LastStockUpdate = now
		if err := tx.Save(&source).Error; err != nil {
			return apperr.Fatal("kaynak stok güncellenemedi", err)
		}

		dest, err := e.receiveTx(tx, toBranchID, productID, quantity, source.LowStockThreshold, createdBy,
			fmt.Sprintf("Transfer <- %s", fromBranch.Name))
		if err != nil {
			return err
		}

		outHistory := models.StockHistory{
			StockID:   source.ID,
			Type:      models.StockMovementOut,
			Quantity:  -quantity,
			Note:      fmt.Sprintf("Transfer -> %s", toBranch.Name),
			CreatedBy: createdBy,
		}
		if err := tx.Create(&outHistory).Error; err != nil {
			return apperr.Fatal("transfer hareketi kaydedilemedi", err)
		}

		result = TransferResult{Source: source, Destination: *dest}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// receiveTx: verilen transaction içinde şubeye giriş uygular. Stok kaydı
// yoksa oluşturur ve IN hareketi yazar. Transfer'in hedef bacağı ve
// teslim alınan satınalma siparişleri bunu kullanır.
func (e *Engine) receiveTx(tx *gorm.DB, branchID, productID uint, quantity, threshold float64, createdBy uint, note string) (*models.Stock, error) {
	var dest models.Stock
	err := lockForUpdate(tx).
		First(&dest, "product_id = ? AND branch_id = ?", productID, branchID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		dest = models.Stock{
			ProductID:         productID,
			BranchID:          branchID,
			Quantity:          quantity,
			LowStockThreshold: threshold,
			LastStockUpdate:   time.Now(),
		}
		if err := tx.Create(&dest).Error; err != nil {
			return nil, apperr.Fatal("hedef stok oluşturulamadı", err)
		}
	case err != nil:
		return nil, apperr.Fatal("hedef stok sorgulanamadı", err)
	default:
		dest.Quantity += quantity
		dest.LastStockUpdate = time.Now()
		if err := tx.Save(&dest).Error; err != nil {
			return nil, apperr.Fatal("hedef stok güncellenemedi", err)
		}
	}

	inHistory := models.StockHistory{
		StockID:   dest.ID,
		Type:      models.StockMovementIn,
		Quantity:  quantity,
		Note:      note,
		CreatedBy: createdBy,
	}
	if err := tx.Create(&inHistory).Error; err != nil {
		return nil, apperr.Fatal("giriş hareketi kaydedilemedi", err)
	}
	return &dest, nil
}

// ReceiveTx: receiveTx'in dışa açık hali; satınalma engine'i teslimat
// kaydederken kendi transaction'ını geçirir.
func (e *Engine) ReceiveTx(tx *gorm.DB, branchID, productID uint, quantity float64, createdBy uint, note string) (*models.Stock, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("Giriş miktarı 0'dan büyük olmalı")
	}
	return e.receiveTx(tx, branchID, productID, quantity, 0, createdBy, note)
}

// DeductTx: verilen transaction içinde şubeden çıkış uygular ve OUT
// hareketi yazar. Satış siparişleri ürün düşümünü bununla yapar. Stok
// kaydı olmayan ürünler takip dışıdır, sessizce atlanır.
func (e *Engine) DeductTx(tx *gorm.DB, branchID, productID uint, quantity float64, createdBy uint, note string) error {
	if quantity <= 0 {
		return apperr.Validation("Çıkış miktarı 0'dan büyük olmalı")
	}

	var stock models.Stock
	err := lockForUpdate(tx).
		First(&stock, "product_id = ? AND branch_id = ?", productID, branchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Fatal("stok sorgulanamadı", err)
	}
	if stock.Quantity < quantity {
		return apperr.Validation("Yetersiz stok: mevcut %.2f, istenen %.2f", stock.Quantity, quantity)
	}

	stock.Quantity -= quantity
	stock.LastStockUpdate = time.Now()
	if err := tx.Save(&stock).Error; err != nil {
		return apperr.Fatal("stok güncellenemedi", err)
	}

	history := models.StockHistory{
		StockID:   stock.ID,
		Type:      models.StockMovementOut,
		Quantity:  -quantity,
		Note:      note,
		CreatedBy: createdBy,
	}
	if err := tx.Create(&history).Error; err != nil {
		return apperr.Fatal("çıkış hareketi kaydedilemedi", err)
	}
	return nil
}

// CountLine: sayım girdisinin tek satırı
type CountLine struct {
	StockID         uint
	CountedQuantity float64
}

// ReconcileCount: fiziksel sayım sonuçlarını stoka yazar. Her satırda
// miktar mutlak değer olarak set edilir, eski-yeni farkı ADJUSTMENT
// hareketi olarak kaydedilir. Listede olmayan stoklara dokunulmaz.
// Herhangi bir satır şubeye ait değilse ya da stok yoksa hiçbir satır
// uygulanmaz. Sayım mevcut miktara eşitse de history yazılır; sayımın
// yapıldığı bilgisi kendi başına kıymetli.
func (e *Engine) ReconcileCount(branchID uint, countedBy uint, lines []CountLine) error {
	if len(lines) == 0 {
		return apperr.Validation("En az bir sayım satırı gönderilmeli")
	}
	for _, line := range lines {
		if line.CountedQuantity < 0 {
			return apperr.Validation("Sayım miktarı negatif olamaz (stok ID: %d)", line.StockID)
		}
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, line := range lines {
			var stock models.Stock
			if err := lockForUpdate(tx).First(&stock, "id = ?", line.StockID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Stok kaydı bulunamadı (ID: %d)", line.StockID)
				}
				return apperr.Fatal("stok sorgulanamadı", err)
			}
			if stock.BranchID != branchID {
				return apperr.Validation("Stok kaydı bu şubeye ait değil (ID: %d)", line.StockID)
			}

			delta := line.CountedQuantity - stock.Quantity
			stock.Quantity = line.CountedQuantity
			stock.LastStockUpdate = now
			if err := tx.Save(&stock).Error; err != nil {
				return apperr.Fatal("stok güncellenemedi", err)
			}

			history := models.StockHistory{
				StockID:   stock.ID,
				Type:      models.StockMovementAdjustment,
				Quantity:  delta,
				Note:      "Stok sayımı",
				CreatedBy: countedBy,
			}
			if err := tx.Create(&history).Error; err != nil {
				return apperr.Fatal("sayım hareketi kaydedilemedi", err)
			}
		}
		return nil
	})
}

// LowStock: miktarı eşiğin altına inmiş (veya eşit) stoklar. Eşiği 0 olan
// kayıtlar takip dışı sayılır.
func (e *Engine) LowStock(branchID uint) ([]models.Stock, error) {
	var stocks []models.Stock
	err := e.db.
		Preload("Product").
		Where("branch_id = ? AND low_stock_threshold > 0 AND quantity <= low_stock_threshold", branchID).
		Order("quantity ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, apperr.Fatal("düşük stoklar listelenemedi", err)
	}
	return stocks, nil
}
