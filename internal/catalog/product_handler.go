package catalog

import (
	"strings"

	"restopos-backend/internal/auth"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID         uint    `json:"id"`
	CategoryID uint    `json:"category_id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	StockCode  string  `json:"stock_code"`
	Price      float64 `json:"price"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
}

type OptionGroupRequest struct {
	Name      string          `json:"name"`
	MinSelect int             `json:"min_select"`
	MaxSelect int             `json:"max_select"`
	Options   []OptionRequest `json:"options"`
}

type OptionRequest struct {
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

type CreateProductRequest struct {
	CategoryID   uint                 `json:"category_id"`
	Name         string               `json:"name"`
	Unit         string               `json:"unit"`
	StockCode    string               `json:"stock_code"`
	Price        float64              `json:"price"`
	OptionGroups []OptionGroupRequest `json:"option_groups"`
}

type UpdateProductRequest struct {
	Name      *string  `json:"name"`
	Unit      *string  `json:"unit"`
	StockCode *string  `json:"stock_code"`
	Price     *float64 `json:"price"`
	IsActive  *bool    `json:"is_active"`
}

type PriceHistoryResponse struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	OldPrice  float64 `json:"old_price"`
	NewPrice  float64 `json:"new_price"`
	ChangedBy uint    `json:"changed_by"`
	CreatedAt string  `json:"created_at"`
}

// POST /api/products
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.CategoryID == 0 || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category_id, ürün adı ve birim zorunlu")
		}
		if body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}

		var category models.Category
		if err := db.First(&category, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
		}

		product := models.Product{
			CategoryID: body.CategoryID,
			Name:       body.Name,
			Unit:       strings.TrimSpace(body.Unit),
			StockCode:  strings.TrimSpace(body.StockCode),
			Price:      body.Price,
			IsActive:   true,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			for _, g := range body.OptionGroups {
				group := models.ProductOptionGroup{
					ProductID: product.ID,
					Name:      strings.TrimSpace(g.Name),
					MinSelect: g.MinSelect,
					MaxSelect: g.MaxSelect,
				}
				if err := tx.Create(&group).Error; err != nil {
					return err
				}
				for _, o := range g.Options {
					option := models.ProductOption{
						OptionGroupID: group.ID,
						Name:          strings.TrimSpace(o.Name),
						PriceDelta:    o.PriceDelta,
					}
					if err := tx.Create(&option).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&product))
	}
}

// GET /api/products?category_id=&restaurant_id=
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Product{})
		if v := c.Query("category_id"); v != "" {
			q = q.Where("category_id = ?", v)
		}
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("category_id IN (?)",
				db.Model(&models.Category{}).Select("id").Where("restaurant_id = ?", v))
		}

		var products []models.Product
		if err := q.Order("name ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, toProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/products/:id
// Fiyat değişirse aynı transaction içinde PriceHistory satırı eklenir.
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var product models.Product
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		oldPrice := product.Price
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			product.Name = name
		}
		if body.Unit != nil {
			product.Unit = strings.TrimSpace(*body.Unit)
		}
		if body.StockCode != nil {
			product.StockCode = strings.TrimSpace(*body.StockCode)
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			product.Price = *body.Price
		}
		if body.IsActive != nil {
			product.IsActive = *body.IsActive
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
			if product.Price != oldPrice {
				history := models.PriceHistory{
					ProductID: product.ID,
					OldPrice:  oldPrice,
					NewPrice:  product.Price,
					ChangedBy: userID,
				}
				return tx.Create(&history).Error
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toProductResponse(&product))
	}
}

// GET /api/products/:id/price-history
func PriceHistoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var product models.Product
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var entries []models.PriceHistory
		if err := db.Where("product_id = ?", id).
			Order("created_at DESC, id DESC").
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fiyat geçmişi listelenemedi")
		}

		resp := make([]PriceHistoryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, PriceHistoryResponse{
				ID:        e.ID,
				ProductID: e.ProductID,
				OldPrice:  e.OldPrice,
				NewPrice:  e.NewPrice,
				ChangedBy: e.ChangedBy,
				CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Unit:       p.Unit,
		StockCode:  p.StockCode,
		Price:      p.Price,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
