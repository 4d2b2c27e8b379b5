package catalog

import (
	"strconv"
	"strings"

	"restopos-backend/internal/cascade"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RestaurantResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type CreateRestaurantRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"` // Opsiyonel, default TRY
	Timezone string `json:"timezone"`
}

type UpdateRestaurantRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// POST /api/restaurants
func CreateRestaurantHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRestaurantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Restoran adı boş olamaz")
		}

		restaurant := models.Restaurant{Name: body.Name, IsActive: true}

		// Restoran ve varsayılan ayarları birlikte oluştur
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&restaurant).Error; err != nil {
				return err
			}
			setting := models.RestaurantSetting{
				RestaurantID: restaurant.ID,
				Currency:     "TRY",
				Timezone:     "Europe/Istanbul",
			}
			if body.Currency != "" {
				setting.Currency = body.Currency
			}
			if body.Timezone != "" {
				setting.Timezone = body.Timezone
			}
			return tx.Create(&setting).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, "Restoran oluşturulamadı (isim kullanımda olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(toRestaurantResponse(&restaurant))
	}
}

// GET /api/restaurants
func ListRestaurantsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var restaurants []models.Restaurant
		if err := db.Order("name ASC").Find(&restaurants).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Restoranlar listelenemedi")
		}

		resp := make([]RestaurantResponse, 0, len(restaurants))
		for i := range restaurants {
			resp = append(resp, toRestaurantResponse(&restaurants[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/restaurants/:id
func GetRestaurantHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restoran bulunamadı")
		}
		return c.JSON(toRestaurantResponse(&restaurant))
	}
}

// PUT /api/restaurants/:id
func UpdateRestaurantHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restoran bulunamadı")
		}

		var body UpdateRestaurantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Restoran adı boş olamaz")
			}
			restaurant.Name = name
		}
		if body.IsActive != nil {
			restaurant.IsActive = *body.IsActive
		}

		if err := db.Save(&restaurant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Restoran güncellenemedi")
		}
		return c.JSON(toRestaurantResponse(&restaurant))
	}
}

// DELETE /api/restaurants/:id
// Tüm bağımlı kayıtlar cascade engine üzerinden tek transaction'da silinir.
func DeleteRestaurantHandler(engine *cascade.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Restoran ID geçersiz")
		}

		if err := engine.DeleteRestaurant(uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toRestaurantResponse(r *models.Restaurant) RestaurantResponse {
	return RestaurantResponse{
		ID:        r.ID,
		Name:      r.Name,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
