package database

import (
	"fmt"
	"log"

	"restopos-backend/internal/config"
	"restopos-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect: Postgres bağlantısını açar ve migration'ı çalıştırır.
// Global handle yok; *gorm.DB çağırana döner, yaşam döngüsü main'de.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}

// Migrate: tüm modelleri migrate eder. Testlerde SQLite üzerinde de çağrılır.
// Dikkat: cascade silme sırası internal/cascade'deki bağımlılık tablosundan
// türetilir; buraya yeni model eklenirse o tabloya da eklenmeli.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Restaurant{},
		&models.RestaurantSetting{},
		&models.Branch{},
		&models.BranchSetting{},
		&models.User{},
		&models.Permission{},
		&models.UserPermission{},
		&models.UserBranch{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.ProductOptionGroup{},
		&models.ProductOption{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Stock{},
		&models.StockHistory{},
		&models.Supplier{},
		&models.ProductSupplier{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Discount{},
		&models.PriceHistory{},
		&models.AccountTransaction{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}
