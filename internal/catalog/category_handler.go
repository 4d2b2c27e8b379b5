package catalog

import (
	"errors"
	"strconv"
	"strings"

	"restopos-backend/internal/cascade"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryResponse struct {
	ID           uint   `json:"id"`
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

type CreateCategoryRequest struct {
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// POST /api/categories
func CreateCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.RestaurantID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id ve kategori adı zorunlu")
		}

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Restoran bulunamadı")
		}

		// Aynı restoranda aynı isimli kategori var mı?
		var existing models.Category
		err := db.Where("restaurant_id = ? AND name = ?", body.RestaurantID, body.Name).
			First(&existing).Error
		if err == nil {
			return fiber.NewError(fiber.StatusConflict, "Bu isimde bir kategori zaten var")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler sorgulanamadı")
		}

		category := models.Category{
			RestaurantID: body.RestaurantID,
			Name:         body.Name,
			IsActive:     true,
		}
		if err := db.Create(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Kategori oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toCategoryResponse(&category))
	}
}

// GET /api/categories?restaurant_id=
func ListCategoriesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Category{})
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}

		var categories []models.Category
		if err := q.Order("name ASC").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}

		resp := make([]CategoryResponse, 0, len(categories))
		for i := range categories {
			resp = append(resp, toCategoryResponse(&categories[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var category models.Category
		if err := db.First(&category, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
			}
			if name != category.Name {
				var existing models.Category
				err := db.Where("restaurant_id = ? AND name = ? AND id <> ?",
					category.RestaurantID, name, category.ID).First(&existing).Error
				if err == nil {
					return fiber.NewError(fiber.StatusConflict, "Bu isimde bir kategori zaten var")
				}
			}
			category.Name = name
		}
		if body.IsActive != nil {
			category.IsActive = *body.IsActive
		}

		if err := db.Save(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori güncellenemedi")
		}
		return c.JSON(toCategoryResponse(&category))
	}
}

// DELETE /api/categories/:id
// Kategori, ürünleri ve ürünlerin stok/ilişki kayıtlarıyla birlikte silinir.
func DeleteCategoryHandler(engine *cascade.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori ID geçersiz")
		}

		if err := engine.DeleteCategory(uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toCategoryResponse(cat *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:           cat.ID,
		RestaurantID: cat.RestaurantID,
		Name:         cat.Name,
		IsActive:     cat.IsActive,
		CreatedAt:    cat.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
