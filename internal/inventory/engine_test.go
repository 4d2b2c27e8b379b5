package inventory

import (
	"fmt"
	"testing"

	"restopos-backend/internal/apperr"
	"restopos-backend/internal/database"
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
	branchA    models.Branch
	branchB    models.Branch
	product    models.Product
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{}
	f.restaurant = models.Restaurant{Name: "Test " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(&f.restaurant).Error)

	f.branchA = models.Branch{RestaurantID: f.restaurant.ID, Name: "Merkez", IsMainBranch: true, IsActive: true}
	require.NoError(t, db.Create(&f.branchA).Error)
	f.branchB = models.Branch{RestaurantID: f.restaurant.ID, Name: "Kadıköy", IsActive: true}
	require.NoError(t, db.Create(&f.branchB).Error)

	category := models.Category{RestaurantID: f.restaurant.ID, Name: "Temel Gıda", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	f.product = models.Product{CategoryID: category.ID, Name: "Un", Unit: "kg", Price: 40, IsActive: true}
	require.NoError(t, db.Create(&f.product).Error)

	return f
}

func createStock(t *testing.T, db *gorm.DB, productID, branchID uint, quantity, threshold float64) models.Stock {
	t.Helper()
	stock := models.Stock{ProductID: productID, BranchID: branchID, Quantity: quantity, LowStockThreshold: threshold}
	require.NoError(t, db.Create(&stock).Error)
	return stock
}

func historyRows(t *testing.T, db *gorm.DB, stockID uint) []models.StockHistory {
	t.Helper()
	var rows []models.StockHistory
	require.NoError(t, db.Where("stock_id = ?", stockID).Order("id ASC").Find(&rows).Error)
	return rows
}

func TestAdjustStockIn(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stock := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)

	updated, err := NewEngine(db).AdjustStock(stock.ID, models.StockMovementIn, 5, 1, "mal kabul")
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.Quantity)

	rows := historyRows(t, db, stock.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StockMovementIn, rows[0].Type)
	assert.Equal(t, 5.0, rows[0].Quantity)
	assert.Equal(t, "mal kabul", rows[0].Note)
}

func TestAdjustStockOut(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stock := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)

	updated, err := NewEngine(db).AdjustStock(stock.ID, models.StockMovementOut, 4, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 6.0, updated.Quantity)

	rows := historyRows(t, db, stock.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, -4.0, rows[0].Quantity)
}

func TestAdjustStockOutInsufficient(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stock := createStock(t, db, f.product.ID, f.branchA.ID, 3, 0)

	_, err := NewEngine(db).AdjustStock(stock.ID, models.StockMovementOut, 5, 1, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// Hiçbir şey yazılmamış olmalı
	var reloaded models.Stock
	require.NoError(t, db.First(&reloaded, stock.ID).Error)
	assert.Equal(t, 3.0, reloaded.Quantity)
	assert.Empty(t, historyRows(t, db, stock.ID))
}

func TestAdjustStockAdjustmentSetsAbsolute(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stock := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)

	updated, err := NewEngine(db).AdjustStock(stock.ID, models.StockMovementAdjustment, 7, 1, "sayım")
	require.NoError(t, err)
	assert.Equal(t, 7.0, updated.Quantity)

	rows := historyRows(t, db, stock.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StockMovementAdjustment, rows[0].Type)
	assert.Equal(t, -3.0, rows[0].Quantity) // delta, mutlak değer değil
}

func TestAdjustStockNotFound(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	_, err := NewEngine(db).AdjustStock(9999, models.StockMovementIn, 1, 1, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTransferConservesTotal(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	source := createStock(t, db, f.product.ID, f.branchA.ID, 10, 3)
	dest := createStock(t, db, f.product.ID, f.branchB.ID, 0, 0)

	result, err := NewEngine(db).Transfer(f.branchA.ID, f.branchB.ID, f.product.ID, 4, 1)
	require.NoError(t, err)

	assert.Equal(t, 6.0, result.Source.Quantity)
	assert.Equal(t, 4.0, result.Destination.Quantity)
	assert.Equal(t, 10.0, result.Source.Quantity+result.Destination.Quantity)

	outRows := historyRows(t, db, source.ID)
	require.Len(t, outRows, 1)
	assert.Equal(t, models.StockMovementOut, outRows[0].Type)
	assert.Equal(t, -4.0, outRows[0].Quantity)

	inRows := historyRows(t, db, dest.ID)
	require.Len(t, inRows, 1)
	assert.Equal(t, models.StockMovementIn, inRows[0].Type)
	assert.Equal(t, 4.0, inRows[0].Quantity)
}

func TestTransferCreatesDestinationStock(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	createStock(t, db, f.product.ID, f.branchA.ID, 10, 3)

	result, err := NewEngine(db).Transfer(f.branchA.ID, f.branchB.ID, f.product.ID, 4, 1)
	require.NoError(t, err)

	assert.Equal(t, 4.0, result.Destination.Quantity)
	assert.Equal(t, f.branchB.ID, result.Destination.BranchID)
	// Eşik kaynaktan kopyalanır
	assert.Equal(t, 3.0, result.Destination.LowStockThreshold)
}

func TestTransferInsufficientIsAtomic(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	source := createStock(t, db, f.product.ID, f.branchA.ID, 2, 0)

	_, err := NewEngine(db).Transfer(f.branchA.ID, f.branchB.ID, f.product.ID, 5, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var reloaded models.Stock
	require.NoError(t, db.First(&reloaded, source.ID).Error)
	assert.Equal(t, 2.0, reloaded.Quantity)
	assert.Empty(t, historyRows(t, db, source.ID))

	// Hedefte stok kaydı açılmamış olmalı
	var destCount int64
	require.NoError(t, db.Model(&models.Stock{}).
		Where("branch_id = ?", f.branchB.ID).Count(&destCount).Error)
	assert.Zero(t, destCount)
}

func TestTransferValidation(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)
	engine := NewEngine(db)

	_, err := engine.Transfer(f.branchA.ID, f.branchA.ID, f.product.ID, 1, 1)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.Transfer(f.branchA.ID, f.branchB.ID, f.product.ID, 0, 1)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.Transfer(f.branchA.ID, 9999, f.product.ID, 1, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestReconcileCountAppliesAbsoluteValues(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stockA := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)

	category := models.Category{RestaurantID: f.restaurant.ID, Name: "İçecek", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	productB := models.Product{CategoryID: category.ID, Name: "Süt", Unit: "lt", Price: 20, IsActive: true}
	require.NoError(t, db.Create(&productB).Error)
	stockB := createStock(t, db, productB.ID, f.branchA.ID, 5, 0)

	err := NewEngine(db).ReconcileCount(f.branchA.ID, 1, []CountLine{
		{StockID: stockA.ID, CountedQuantity: 7},
	})
	require.NoError(t, err)

	var a, b models.Stock
	require.NoError(t, db.First(&a, stockA.ID).Error)
	require.NoError(t, db.First(&b, stockB.ID).Error)
	assert.Equal(t, 7.0, a.Quantity)
	assert.Equal(t, 5.0, b.Quantity) // listede yok, dokunulmadı

	rows := historyRows(t, db, stockA.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StockMovementAdjustment, rows[0].Type)
	assert.Equal(t, -3.0, rows[0].Quantity)
	assert.Empty(t, historyRows(t, db, stockB.ID))
}

func TestReconcileCountAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stockA := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)
	stockOther := createStock(t, db, f.product.ID, f.branchB.ID, 5, 0)

	err := NewEngine(db).ReconcileCount(f.branchA.ID, 1, []CountLine{
		{StockID: stockA.ID, CountedQuantity: 7},
		{StockID: stockOther.ID, CountedQuantity: 3}, // başka şubenin stoğu
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// İlk satır uygulanmış olsa bile geri alınmalı
	var a models.Stock
	require.NoError(t, db.First(&a, stockA.ID).Error)
	assert.Equal(t, 10.0, a.Quantity)
	assert.Empty(t, historyRows(t, db, stockA.ID))
}

func TestReconcileCountEqualStillWritesHistory(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stock := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)

	err := NewEngine(db).ReconcileCount(f.branchA.ID, 1, []CountLine{
		{StockID: stock.ID, CountedQuantity: 10},
	})
	require.NoError(t, err)

	rows := historyRows(t, db, stock.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Quantity)
}

func TestReconcileCountNegativeRejected(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	stock := createStock(t, db, f.product.ID, f.branchA.ID, 10, 0)

	err := NewEngine(db).ReconcileCount(f.branchA.ID, 1, []CountLine{
		{StockID: stock.ID, CountedQuantity: -1},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLowStock(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	low := createStock(t, db, f.product.ID, f.branchA.ID, 2, 5)

	category := models.Category{RestaurantID: f.restaurant.ID, Name: "İçecek", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	productB := models.Product{CategoryID: category.ID, Name: "Süt", Unit: "lt", Price: 20, IsActive: true}
	require.NoError(t, db.Create(&productB).Error)
	createStock(t, db, productB.ID, f.branchA.ID, 50, 5)

	productC := models.Product{CategoryID: category.ID, Name: "Tuz", Unit: "kg", Price: 10, IsActive: true}
	require.NoError(t, db.Create(&productC).Error)
	createStock(t, db, productC.ID, f.branchA.ID, 0, 0) // eşiksiz, takip dışı

	stocks, err := NewEngine(db).LowStock(f.branchA.ID)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, low.ID, stocks[0].ID)
}

func TestDeductTxSkipsUntrackedProduct(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	engine := NewEngine(db)

	// Stok kaydı olmayan ürün için düşüm sessizce atlanır
	err := db.Transaction(func(tx *gorm.DB) error {
		return engine.DeductTx(tx, f.branchA.ID, f.product.ID, 3, 1, "satış")
	})
	require.NoError(t, err)
}

func TestDeductTxInsufficient(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	createStock(t, db, f.product.ID, f.branchA.ID, 2, 0)
	engine := NewEngine(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return engine.DeductTx(tx, f.branchA.ID, f.product.ID, 5, 1, "satış")
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
