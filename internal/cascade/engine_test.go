package cascade

import (
	"fmt"
	"testing"
	"time"

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

// seedRestaurant: her bağımlı tablodan en az bir satır içeren tam bir
// restoran ağacı kurar.
func seedRestaurant(t *testing.T, db *gorm.DB) *models.Restaurant {
	t.Helper()

	restaurant := models.Restaurant{Name: "Test Restoran " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(&restaurant).Error)
	require.NoError(t, db.Create(&models.RestaurantSetting{RestaurantID: restaurant.ID, Currency: "TRY"}).Error)

	branch := models.Branch{RestaurantID: restaurant.ID, Name: "Merkez", IsMainBranch: true, IsActive: true}
	require.NoError(t, db.Create(&branch).Error)
	require.NoError(t, db.Create(&models.BranchSetting{BranchID: branch.ID, OpeningTime: "09:00"}).Error)

	user := models.User{
		RestaurantID: &restaurant.ID,
		BranchID:     &branch.ID,
		Name:         "Şube Kullanıcısı",
		Email:        uuid.NewString()[:8] + "@test.local",
		PasswordHash: "x",
		Role:         models.RoleBranchUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	permission := models.Permission{Code: "stock.transfer." + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&permission).Error)
	require.NoError(t, db.Create(&models.UserPermission{UserID: user.ID, PermissionID: permission.ID}).Error)
	require.NoError(t, db.Create(&models.UserBranch{UserID: user.ID, BranchID: branch.ID}).Error)
	require.NoError(t, db.Create(&models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	category := models.Category{RestaurantID: restaurant.ID, Name: "İçecekler", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	product := models.Product{CategoryID: category.ID, Name: "Ayran", Unit: "adet", Price: 30, IsActive: true}
	require.NoError(t, db.Create(&product).Error)

	group := models.ProductOptionGroup{ProductID: product.ID, Name: "Boy", MaxSelect: 1}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.ProductOption{OptionGroupID: group.ID, Name: "Büyük", PriceDelta: 5}).Error)

	recipe := models.Recipe{ProductID: product.ID}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&models.RecipeItem{RecipeID: recipe.ID, IngredientProductID: product.ID, Quantity: 1, Unit: "adet"}).Error)

	stock := models.Stock{ProductID: product.ID, BranchID: branch.ID, Quantity: 10}
	require.NoError(t, db.Create(&stock).Error)
	require.NoError(t, db.Create(&models.StockHistory{StockID: stock.ID, Type: models.StockMovementIn, Quantity: 10, CreatedBy: user.ID}).Error)

	require.NoError(t, db.Create(&models.PriceHistory{ProductID: product.ID, OldPrice: 25, NewPrice: 30, ChangedBy: user.ID}).Error)

	supplier := models.Supplier{RestaurantID: restaurant.ID, Name: "Süt A.Ş."}
	require.NoError(t, db.Create(&supplier).Error)
	require.NoError(t, db.Create(&models.ProductSupplier{ProductID: product.ID, SupplierID: supplier.ID, IsPrimary: true}).Error)

	po := models.PurchaseOrder{
		OrderNumber:  "PO-" + uuid.NewString()[:8],
		SupplierID:   supplier.ID,
		RestaurantID: restaurant.ID,
		BranchID:     branch.ID,
		Status:       models.PurchaseOrderDelivered,
		OrderDate:    time.Now(),
	}
	require.NoError(t, db.Create(&po).Error)
	require.NoError(t, db.Create(&models.PurchaseOrderItem{
		PurchaseOrderID: po.ID, ProductID: product.ID, Quantity: 5, UnitPrice: 10, TotalPrice: 50,
	}).Error)

	order := models.Order{
		RestaurantID: restaurant.ID,
		BranchID:     branch.ID,
		UserID:       user.ID,
		Status:       models.OrderStatusPaid,
		TotalAmount:  60,
		OrderDate:    time.Now(),
	}
	require.NoError(t, db.Create(&order).Error)
	item := models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 2, UnitPrice: 30, TotalPrice: 60}
	require.NoError(t, db.Create(&item).Error)
	require.NoError(t, db.Create(&models.Discount{
		OrderID: &order.ID, DiscountType: models.DiscountFixedAmount, DiscountAmount: 5, CreatedBy: user.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Discount{
		OrderItemID: &item.ID, DiscountType: models.DiscountPercentage, DiscountAmount: 10, CreatedBy: user.ID,
	}).Error)

	require.NoError(t, db.Create(&models.AccountTransaction{
		RestaurantID: restaurant.ID,
		BranchID:     &branch.ID,
		OrderID:      &order.ID,
		Type:         models.AccountTransactionCredit,
		Amount:       60,
		Date:         time.Now(),
		CreatedBy:    user.ID,
	}).Error)

	return &restaurant
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestDeleteRestaurantLeavesNoOrphans(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	require.NoError(t, NewEngine(db).DeleteRestaurant(restaurant.ID))

	for _, model := range []any{
		&models.Restaurant{}, &models.RestaurantSetting{},
		&models.Branch{}, &models.BranchSetting{},
		&models.User{}, &models.UserPermission{}, &models.UserBranch{}, &models.RefreshToken{},
		&models.Category{}, &models.Product{},
		&models.ProductOptionGroup{}, &models.ProductOption{},
		&models.Recipe{}, &models.RecipeItem{},
		&models.Stock{}, &models.StockHistory{},
		&models.Supplier{}, &models.ProductSupplier{},
		&models.PurchaseOrder{}, &models.PurchaseOrderItem{},
		&models.Order{}, &models.OrderItem{}, &models.Discount{},
		&models.PriceHistory{}, &models.AccountTransaction{},
	} {
		assert.Zero(t, countRows(t, db, model), "%T tablosunda sahipsiz satır kaldı", model)
	}

	// Silme işleminden bağımsız tablolar yerinde durmalı
	assert.Equal(t, int64(1), countRows(t, db, &models.Permission{}))
}

func TestDeleteRestaurantOthersUntouched(t *testing.T) {
	db := newTestDB(t)
	victim := seedRestaurant(t, db)
	survivor := seedRestaurant(t, db)

	require.NoError(t, NewEngine(db).DeleteRestaurant(victim.ID))

	assert.Equal(t, int64(1), countRows(t, db, &models.Restaurant{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Branch{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Stock{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.StockHistory{}))

	var remaining models.Restaurant
	require.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, survivor.ID, remaining.ID)
}

func TestDeleteRestaurantNotFound(t *testing.T) {
	db := newTestDB(t)

	err := NewEngine(db).DeleteRestaurant(9999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteBranchRemovesSubtree(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	var branch models.Branch
	require.NoError(t, db.First(&branch, "restaurant_id = ?", restaurant.ID).Error)

	// İkinci bir şube ekle ki ana şube kuralı takılmasın
	other := models.Branch{RestaurantID: restaurant.ID, Name: "Kadıköy", IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, NewEngine(db).DeleteBranch(other.ID))

	// Ana şubenin ağacı yerinde
	assert.Equal(t, int64(1), countRows(t, db, &models.Branch{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Stock{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Restaurant{}))
}

func TestDeleteBranchUnassignsUsers(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	other := models.Branch{RestaurantID: restaurant.ID, Name: "Kadıköy", IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	user := models.User{
		RestaurantID: &restaurant.ID,
		BranchID:     &other.ID,
		Name:         "Kadıköy Kullanıcısı",
		Email:        uuid.NewString()[:8] + "@test.local",
		PasswordHash: "x",
		Role:         models.RoleBranchUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, NewEngine(db).DeleteBranch(other.ID))

	// Kullanıcı silinmez, şube ataması düşer
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Nil(t, reloaded.BranchID)
	assert.Equal(t, int64(1), countRows(t, db, &models.Branch{}))
}

func TestDeleteBranchNotFound(t *testing.T) {
	db := newTestDB(t)

	err := NewEngine(db).DeleteBranch(9999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteMainBranchRejectedWhileOthersExist(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	var main models.Branch
	require.NoError(t, db.First(&main, "restaurant_id = ? AND is_main_branch = ?", restaurant.ID, true).Error)

	other := models.Branch{RestaurantID: restaurant.ID, Name: "Kadıköy", IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	err := NewEngine(db).DeleteBranch(main.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, int64(2), countRows(t, db, &models.Branch{}))
}

func TestDeleteCategoryRemovesProductsAndStocks(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	var category models.Category
	require.NoError(t, db.First(&category, "restaurant_id = ?", restaurant.ID).Error)

	require.NoError(t, NewEngine(db).DeleteCategory(category.ID))

	assert.Zero(t, countRows(t, db, &models.Category{}))
	assert.Zero(t, countRows(t, db, &models.Product{}))
	assert.Zero(t, countRows(t, db, &models.ProductOption{}))
	assert.Zero(t, countRows(t, db, &models.Stock{}))
	assert.Zero(t, countRows(t, db, &models.StockHistory{}))
	assert.Zero(t, countRows(t, db, &models.ProductSupplier{}))
	assert.Zero(t, countRows(t, db, &models.PurchaseOrderItem{}))
	assert.Zero(t, countRows(t, db, &models.OrderItem{}))

	// Ürün dışı varlıklar durur
	assert.Equal(t, int64(1), countRows(t, db, &models.Restaurant{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Supplier{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.PurchaseOrder{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Order{}))
}

func TestDeleteCategoryRemovesIngredientRecipeItems(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	// Hammadde ayrı bir kategoride, reçete başka kategorideki ürüne bağlı
	rawCategory := models.Category{RestaurantID: restaurant.ID, Name: "Hammadde", IsActive: true}
	require.NoError(t, db.Create(&rawCategory).Error)
	ingredient := models.Product{CategoryID: rawCategory.ID, Name: "Süt", Unit: "lt", Price: 20, IsActive: true}
	require.NoError(t, db.Create(&ingredient).Error)

	var saleProduct models.Product
	require.NoError(t, db.First(&saleProduct, "category_id <> ?", rawCategory.ID).Error)
	var recipe models.Recipe
	require.NoError(t, db.First(&recipe, "product_id = ?", saleProduct.ID).Error)
	require.NoError(t, db.Create(&models.RecipeItem{
		RecipeID: recipe.ID, IngredientProductID: ingredient.ID, Quantity: 0.2, Unit: "lt",
	}).Error)

	require.NoError(t, NewEngine(db).DeleteCategory(rawCategory.ID))

	// Silinen hammaddeye bakan reçete kalemi kalmamalı, reçetenin kendisi durmalı
	var dangling int64
	require.NoError(t, db.Model(&models.RecipeItem{}).
		Where("ingredient_product_id = ?", ingredient.ID).Count(&dangling).Error)
	assert.Zero(t, dangling)
	assert.Equal(t, int64(1), countRows(t, db, &models.Recipe{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Product{}))
}

func TestDeleteUserRemovesLinks(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db)

	var user models.User
	require.NoError(t, db.First(&user, "restaurant_id = ?", restaurant.ID).Error)

	require.NoError(t, NewEngine(db).DeleteUser(user.ID))

	assert.Zero(t, countRows(t, db, &models.User{}))
	assert.Zero(t, countRows(t, db, &models.UserPermission{}))
	assert.Zero(t, countRows(t, db, &models.UserBranch{}))
	assert.Zero(t, countRows(t, db, &models.RefreshToken{}))

	// Kullanıcının geçmiş kayıtları (sipariş, stok hareketi) silinmez
	assert.Equal(t, int64(1), countRows(t, db, &models.Order{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.StockHistory{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Permission{}))
}
