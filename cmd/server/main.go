package main

import (
	"errors"
	"log"
	"strings"

	"restopos-backend/internal/account"
	"restopos-backend/internal/admin"
	"restopos-backend/internal/apperr"
	"restopos-backend/internal/auth"
	"restopos-backend/internal/cascade"
	"restopos-backend/internal/catalog"
	"restopos-backend/internal/config"
	"restopos-backend/internal/database"
	"restopos-backend/internal/inventory"
	"restopos-backend/internal/models"
	"restopos-backend/internal/purchase"
	"restopos-backend/internal/sales"
	"restopos-backend/internal/supplier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Veritabanı bağlantısı kurulamadı:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration başarısız:", err)
	}

	cascadeEngine := cascade.NewEngine(db)
	inventoryEngine := inventory.NewEngine(db)
	purchaseEngine := purchase.NewEngine(db, inventoryEngine)
	supplierEngine := supplier.NewEngine(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				status := statusOf(appErr.Kind)
				if status == fiber.StatusInternalServerError {
					log.Println("Store hatası:", appErr)
					return c.Status(status).JSON(fiber.Map{
						"error": "Beklenmeyen sunucu hatası",
					})
				}
				return c.Status(status).JSON(fiber.Map{
					"error": appErr.Message,
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizleyerek geçir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg, db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))
	api.Post("/auth/refresh", auth.RefreshHandler(cfg, db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Post("/auth/logout", auth.LogoutHandler(db))

	// Super admin: restoran yönetimi
	adminOnly := protected.Group("")
	adminOnly.Use(auth.RequireRole(models.RoleSuperAdmin))

	adminOnly.Post("/restaurants", catalog.CreateRestaurantHandler(db))
	adminOnly.Get("/restaurants", catalog.ListRestaurantsHandler(db))
	adminOnly.Get("/restaurants/:id", catalog.GetRestaurantHandler(db))
	adminOnly.Put("/restaurants/:id", catalog.UpdateRestaurantHandler(db))
	adminOnly.Delete("/restaurants/:id", catalog.DeleteRestaurantHandler(cascadeEngine))

	// Restoran yöneticisi ve üstü
	managers := protected.Group("")
	managers.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleRestaurantAdmin))

	// Şube yönetimi
	managers.Post("/branches", catalog.CreateBranchHandler(db))
	managers.Get("/branches", catalog.ListBranchesHandler(db))
	managers.Get("/branches/:id", catalog.GetBranchHandler(db))
	managers.Put("/branches/:id", catalog.UpdateBranchHandler(db))
	managers.Delete("/branches/:id", catalog.DeleteBranchHandler(cascadeEngine))

	// Kategori yönetimi
	managers.Post("/categories", catalog.CreateCategoryHandler(db))
	managers.Get("/categories", catalog.ListCategoriesHandler(db))
	managers.Put("/categories/:id", catalog.UpdateCategoryHandler(db))
	managers.Delete("/categories/:id", catalog.DeleteCategoryHandler(cascadeEngine))

	// Ürün yönetimi
	managers.Post("/products", catalog.CreateProductHandler(db))
	managers.Put("/products/:id", catalog.UpdateProductHandler(db))
	managers.Get("/products/:id/price-history", catalog.PriceHistoryHandler(db))
	protected.Get("/products", catalog.ListProductsHandler(db))

	// Kullanıcı yönetimi
	managers.Post("/users", admin.CreateUserHandler(db))
	managers.Get("/users", admin.ListUsersHandler(db))
	managers.Put("/users/:id", admin.UpdateUserHandler(db))
	managers.Delete("/users/:id", admin.DeleteUserHandler(cascadeEngine))
	managers.Put("/users/:id/permissions", admin.SetUserPermissionsHandler(db))
	managers.Get("/users/:id/permissions", admin.ListUserPermissionsHandler(db))

	// Tedarikçi yönetimi
	managers.Post("/suppliers", supplier.CreateSupplierHandler(db))
	managers.Get("/suppliers", supplier.ListSuppliersHandler(db))
	managers.Put("/suppliers/:id", supplier.UpdateSupplierHandler(db))
	managers.Delete("/suppliers/:id", supplier.DeleteSupplierHandler(supplierEngine))

	// Ürün-tedarikçi ilişkileri
	managers.Post("/product-suppliers", supplier.CreateRelationHandler(supplierEngine))
	managers.Get("/products/:id/suppliers", supplier.ListProductSuppliersHandler(db))
	managers.Put("/product-suppliers/:productId/:supplierId", supplier.UpdateRelationHandler(supplierEngine))
	managers.Delete("/product-suppliers/:productId/:supplierId", supplier.DeleteRelationHandler(supplierEngine))

	// Stok yönetimi
	protected.Get("/stocks", inventory.ListStocksHandler(db))
	protected.Post("/stocks", inventory.CreateStockHandler(db))
	protected.Post("/stocks/:id/adjust", inventory.AdjustStockHandler(inventoryEngine, db))
	protected.Post("/stocks/transfer", inventory.TransferHandler(inventoryEngine))
	protected.Post("/stocks/count", inventory.CountHandler(inventoryEngine))
	protected.Post("/stocks/count/import", inventory.CountImportHandler(inventoryEngine, db))
	protected.Get("/stocks/low", inventory.LowStockHandler(inventoryEngine))
	protected.Get("/stocks/:id/history", inventory.StockHistoryHandler(db))

	// Satınalma siparişleri
	managers.Post("/purchase-orders", purchase.CreateOrderHandler(purchaseEngine))
	protected.Get("/purchase-orders", purchase.ListOrdersHandler(db))
	protected.Get("/purchase-orders/:id", purchase.GetOrderHandler(purchaseEngine))
	managers.Put("/purchase-orders/:id", purchase.UpdateOrderHandler(purchaseEngine))
	managers.Put("/purchase-orders/:id/status", purchase.UpdateStatusHandler(purchaseEngine))
	managers.Delete("/purchase-orders/:id", purchase.DeleteOrderHandler(purchaseEngine))

	// Satış siparişleri
	protected.Post("/orders", sales.CreateOrderHandler(db, inventoryEngine))
	protected.Get("/orders", sales.ListOrdersHandler(db))
	protected.Post("/orders/:id/pay", sales.PayOrderHandler(db))
	protected.Post("/orders/:id/cancel", sales.CancelOrderHandler(db))

	// İndirimler
	protected.Post("/discounts", catalog.CreateDiscountHandler(db))
	protected.Get("/discounts", catalog.ListDiscountsHandler(db))
	managers.Delete("/discounts/:id", catalog.DeleteDiscountHandler(db))

	// Cari hesap
	managers.Post("/account-transactions", account.CreateTransactionHandler(db))
	managers.Get("/account-transactions", account.ListTransactionsHandler(db))
	managers.Get("/account-transactions/summary", account.SummaryHandler(db))

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
