package cascade

import "restopos-backend/internal/models"

// dependent: bir tabloyu üst tablosuna bağlayan foreign key tanımı
type dependent struct {
	model any    // GORM modeli
	table string // tablo adı
	fk    string // üst tabloya bakan kolon
}

// Tablo adları; graph anahtarları ve DeletionOrder çıktısı bunları kullanır.
const (
	tableRestaurants         = "restaurants"
	tableRestaurantSettings  = "restaurant_settings"
	tableBranches            = "branches"
	tableBranchSettings      = "branch_settings"
	tableUsers               = "users"
	tableUserPermissions     = "user_permissions"
	tableUserBranches        = "user_branches"
	tableRefreshTokens       = "refresh_tokens"
	tableCategories          = "categories"
	tableProducts            = "products"
	tableProductOptionGroups = "product_option_groups"
	tableProductOptions      = "product_options"
	tableRecipes             = "recipes"
	tableRecipeItems         = "recipe_items"
	tableStocks              = "stocks"
	tableStockHistories      = "stock_histories"
	tableProductSuppliers    = "product_suppliers"
	tableSuppliers           = "suppliers"
	tablePurchaseOrders      = "purchase_orders"
	tablePurchaseOrderItems  = "purchase_order_items"
	tableOrders              = "orders"
	tableOrderItems          = "order_items"
	tableDiscounts           = "discounts"
	tablePriceHistories      = "price_histories"
	tableAccountTransactions = "account_transactions"
)

// graph: tablo -> doğrudan bağımlıları. Silme sırası buradan türetilir,
// elle yazılmış sıra listesi yok. Şemaya yeni foreign key eklenirse
// buraya da eklenmeli; eksik kalırsa silme FK ihlaliyle patlar ve
// TestDeletionOrderCoversAllForeignKeys yakalar.
var graph = map[string][]dependent{
	tableRestaurants: {
		{&models.RestaurantSetting{}, tableRestaurantSettings, "restaurant_id"},
		// Kullanıcılar şubelerden önce: users.branch_id şubelere bakar.
		{&models.User{}, tableUsers, "restaurant_id"},
		{&models.Branch{}, tableBranches, "restaurant_id"},
		{&models.Category{}, tableCategories, "restaurant_id"},
		{&models.Supplier{}, tableSuppliers, "restaurant_id"},
		{&models.PurchaseOrder{}, tablePurchaseOrders, "restaurant_id"},
		{&models.Order{}, tableOrders, "restaurant_id"},
		{&models.AccountTransaction{}, tableAccountTransactions, "restaurant_id"},
	},
	tableBranches: {
		{&models.BranchSetting{}, tableBranchSettings, "branch_id"},
		{&models.Stock{}, tableStocks, "branch_id"},
		{&models.PurchaseOrder{}, tablePurchaseOrders, "branch_id"},
		{&models.Order{}, tableOrders, "branch_id"},
		{&models.UserBranch{}, tableUserBranches, "branch_id"},
		{&models.AccountTransaction{}, tableAccountTransactions, "branch_id"},
	},
	tableCategories: {
		{&models.Product{}, tableProducts, "category_id"},
	},
	tableProducts: {
		{&models.Stock{}, tableStocks, "product_id"},
		{&models.ProductSupplier{}, tableProductSuppliers, "product_id"},
		{&models.ProductOptionGroup{}, tableProductOptionGroups, "product_id"},
		{&models.Recipe{}, tableRecipes, "product_id"},
		// Silinen ürünü hammadde olarak gösteren reçete kalemleri de gider;
		// başka kategorideki bir reçete silinmiş ürüne bakamaz.
		{&models.RecipeItem{}, tableRecipeItems, "ingredient_product_id"},
		{&models.PurchaseOrderItem{}, tablePurchaseOrderItems, "product_id"},
		{&models.OrderItem{}, tableOrderItems, "product_id"},
		{&models.PriceHistory{}, tablePriceHistories, "product_id"},
	},
	tableProductOptionGroups: {
		{&models.ProductOption{}, tableProductOptions, "option_group_id"},
	},
	tableRecipes: {
		{&models.RecipeItem{}, tableRecipeItems, "recipe_id"},
	},
	tableStocks: {
		{&models.StockHistory{}, tableStockHistories, "stock_id"},
	},
	tableSuppliers: {
		{&models.ProductSupplier{}, tableProductSuppliers, "supplier_id"},
		{&models.PurchaseOrder{}, tablePurchaseOrders, "supplier_id"},
	},
	tablePurchaseOrders: {
		{&models.PurchaseOrderItem{}, tablePurchaseOrderItems, "purchase_order_id"},
	},
	tableOrders: {
		{&models.OrderItem{}, tableOrderItems, "order_id"},
		{&models.Discount{}, tableDiscounts, "order_id"},
		{&models.AccountTransaction{}, tableAccountTransactions, "order_id"},
	},
	tableOrderItems: {
		{&models.Discount{}, tableDiscounts, "order_item_id"},
	},
	tableUsers: {
		{&models.UserPermission{}, tableUserPermissions, "user_id"},
		{&models.UserBranch{}, tableUserBranches, "user_id"},
		{&models.RefreshToken{}, tableRefreshTokens, "user_id"},
	},
}

// detach: silinen tabloya dışarıdan bakan opsiyonel foreign key'ler.
// Sahip satır silinmez, kolon satır silinmeden önce NULL'a çekilir:
// şubesi kapanan kullanıcı restoranda kalır.
var detach = map[string][]dependent{
	tableBranches: {
		{&models.User{}, tableUsers, "branch_id"},
	},
}

// DeletionOrder: verilen kökten ulaşılabilen tabloların topolojik silme
// sırası (yapraklar önce, kök en son). Her tablo, kendisine foreign key
// ile bağlı tüm tablolardan sonra gelir.
func DeletionOrder(root string) []string {
	visited := make(map[string]bool)
	var order []string

	var visit func(table string)
	visit = func(table string) {
		if visited[table] {
			return
		}
		visited[table] = true
		for _, dep := range graph[table] {
			visit(dep.table)
		}
		order = append(order, table)
	}
	visit(root)

	// visit her tabloyu kendi bağımlılarından SONRA ekler; liste bu haliyle
	// yapraklardan köke doğru sıralıdır.
	return order
}
