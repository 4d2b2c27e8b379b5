package purchase

import (
	"fmt"
	"testing"
	"time"

	"restopos-backend/internal/apperr"
	"restopos-backend/internal/database"
	"restopos-backend/internal/inventory"
	"restopos-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	restaurant models.Restaurant
	branch     models.Branch
	supplier   models.Supplier
	productA   models.Product
	productB   models.Product
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{}
	f.restaurant = models.Restaurant{Name: "Test " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(&f.restaurant).Error)

	f.branch = models.Branch{RestaurantID: f.restaurant.ID, Name: "Merkez", IsMainBranch: true, IsActive: true}
	require.NoError(t, db.Create(&f.branch).Error)

	f.supplier = models.Supplier{RestaurantID: f.restaurant.ID, Name: "Toptancı"}
	require.NoError(t, db.Create(&f.supplier).Error)

	category := models.Category{RestaurantID: f.restaurant.ID, Name: "Temel Gıda", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	f.productA = models.Product{CategoryID: category.ID, Name: "Un", Unit: "kg", Price: 40, IsActive: true}
	require.NoError(t, db.Create(&f.productA).Error)
	f.productB = models.Product{CategoryID: category.ID, Name: "Şeker", Unit: "kg", Price: 50, IsActive: true}
	require.NoError(t, db.Create(&f.productB).Error)

	return f
}

func newEngine(db *gorm.DB) *Engine {
	return NewEngine(db, inventory.NewEngine(db))
}

func createInput(f fixture, items []ItemInput) CreateInput {
	return CreateInput{
		SupplierID:   f.supplier.ID,
		RestaurantID: f.restaurant.ID,
		BranchID:     f.branch.ID,
		OrderDate:    time.Now(),
		Items:        items,
	}
}

func TestCreateComputesTotals(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)

	order, err := newEngine(db).Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
		{ProductID: f.productB.ID, Quantity: 4, UnitPrice: 5},
	}))
	require.NoError(t, err)

	assert.Equal(t, models.PurchaseOrderPending, order.Status)
	assert.Equal(t, 40.0, order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 20.0, order.Items[0].TotalPrice)
	assert.Equal(t, 20.0, order.Items[1].TotalPrice)
	assert.NotEmpty(t, order.OrderNumber)

	// DB'deki satır da aynı toplamı taşımalı
	var stored models.PurchaseOrder
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, 40.0, stored.TotalAmount)
}

func TestCreateValidation(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	_, err := engine.Create(createInput(f, nil))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.Create(createInput(f, []ItemInput{{ProductID: f.productA.ID, Quantity: 0, UnitPrice: 10}}))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.Create(createInput(f, []ItemInput{{ProductID: f.productA.ID, Quantity: 1, UnitPrice: -1}}))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.Create(createInput(f, []ItemInput{{ProductID: 9999, Quantity: 1, UnitPrice: 10}}))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in := createInput(f, []ItemInput{{ProductID: f.productA.ID, Quantity: 1, UnitPrice: 10}})
	in.SupplierID = 9999
	_, err = engine.Create(in)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateReplacesItemsAndRecomputes(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
		{ProductID: f.productB.ID, Quantity: 4, UnitPrice: 5},
	}))
	require.NoError(t, err)

	updated, err := engine.Update(order.ID, UpdateInput{
		Items: []ItemInput{{ProductID: f.productA.ID, Quantity: 3, UnitPrice: 8}},
	})
	require.NoError(t, err)

	assert.Equal(t, 24.0, updated.TotalAmount)
	require.Len(t, updated.Items, 1)

	// Eski kalemler toptan silinmiş olmalı
	var itemCount int64
	require.NoError(t, db.Model(&models.PurchaseOrderItem{}).
		Where("purchase_order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestUpdateNotesOnlyKeepsItems(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
	}))
	require.NoError(t, err)

	notes := "acele"
	updated, err := engine.Update(order.ID, UpdateInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "acele", updated.Notes)
	assert.Equal(t, 20.0, updated.TotalAmount)
	require.Len(t, updated.Items, 1)
}

func TestStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
	}))
	require.NoError(t, err)

	order, err = engine.UpdateStatus(order.ID, models.PurchaseOrderConfirmed, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseOrderConfirmed, order.Status)

	order, err = engine.UpdateStatus(order.ID, models.PurchaseOrderDelivered, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseOrderDelivered, order.Status)
}

func TestTerminalStatusRejectsTransition(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
	}))
	require.NoError(t, err)

	_, err = engine.UpdateStatus(order.ID, models.PurchaseOrderCancelled, 1)
	require.NoError(t, err)

	// CANCELLED terminaldir, geri dönüş yok
	_, err = engine.UpdateStatus(order.ID, models.PurchaseOrderPending, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var stored models.PurchaseOrder
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.PurchaseOrderCancelled, stored.Status)
}

func TestSkippingConfirmedRejected(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
	}))
	require.NoError(t, err)

	// PENDING'den doğrudan DELIVERED olmaz
	_, err = engine.UpdateStatus(order.ID, models.PurchaseOrderDelivered, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestInvalidStatusValueRejected(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
	}))
	require.NoError(t, err)

	_, err = engine.UpdateStatus(order.ID, "SHIPPED", 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeliveredBooksStockAndRefreshesPrice(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	// Üründe mevcut stok ve tedarikçi ilişkisi var
	stock := models.Stock{ProductID: f.productA.ID, BranchID: f.branch.ID, Quantity: 3}
	require.NoError(t, db.Create(&stock).Error)
	require.NoError(t, db.Create(&models.ProductSupplier{
		ProductID: f.productA.ID, SupplierID: f.supplier.ID, IsPrimary: true, LastPurchasePrice: 8,
	}).Error)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 5, UnitPrice: 12},
		{ProductID: f.productB.ID, Quantity: 2, UnitPrice: 7},
	}))
	require.NoError(t, err)

	_, err = engine.UpdateStatus(order.ID, models.PurchaseOrderConfirmed, 1)
	require.NoError(t, err)
	_, err = engine.UpdateStatus(order.ID, models.PurchaseOrderDelivered, 1)
	require.NoError(t, err)

	// Mevcut stok arttı
	var reloaded models.Stock
	require.NoError(t, db.First(&reloaded, stock.ID).Error)
	assert.Equal(t, 8.0, reloaded.Quantity)

	// Stok kaydı olmayan ürün için kayıt açıldı
	var created models.Stock
	require.NoError(t, db.First(&created, "product_id = ? AND branch_id = ?", f.productB.ID, f.branch.ID).Error)
	assert.Equal(t, 2.0, created.Quantity)

	// Her kalem için IN hareketi yazıldı
	var historyCount int64
	require.NoError(t, db.Model(&models.StockHistory{}).
		Where("type = ?", models.StockMovementIn).Count(&historyCount).Error)
	assert.Equal(t, int64(2), historyCount)

	// Son alış fiyatı tazelendi
	var relation models.ProductSupplier
	require.NoError(t, db.First(&relation, "product_id = ? AND supplier_id = ?", f.productA.ID, f.supplier.ID).Error)
	assert.Equal(t, 12.0, relation.LastPurchasePrice)
}

func TestUpdateItemsOnTerminalRejected(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
	}))
	require.NoError(t, err)
	_, err = engine.UpdateStatus(order.ID, models.PurchaseOrderCancelled, 1)
	require.NoError(t, err)

	_, err = engine.Update(order.ID, UpdateInput{
		Items: []ItemInput{{ProductID: f.productB.ID, Quantity: 1, UnitPrice: 5}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteRemovesItemsThenOrder(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := newEngine(db)

	order, err := engine.Create(createInput(f, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2, UnitPrice: 10},
		{ProductID: f.productB.ID, Quantity: 1, UnitPrice: 5},
	}))
	require.NoError(t, err)

	require.NoError(t, engine.Delete(order.ID))

	var orderCount, itemCount int64
	require.NoError(t, db.Model(&models.PurchaseOrder{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.PurchaseOrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}

func TestDeleteNotFound(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	err := newEngine(db).Delete(9999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
