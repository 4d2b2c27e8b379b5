package catalog

import (
	"strconv"
	"strings"

	"restopos-backend/internal/cascade"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BranchResponse struct {
	ID           uint   `json:"id"`
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	IsMainBranch bool   `json:"is_main_branch"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

type CreateBranchRequest struct {
	RestaurantID uint    `json:"restaurant_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Phone        *string `json:"phone"` // Opsiyonel
	IsMainBranch bool    `json:"is_main_branch"`
}

type UpdateBranchRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	IsMainBranch *bool   `json:"is_main_branch"`
	IsActive     *bool   `json:"is_active"`
}

// setMainBranch: restoranın diğer şubelerindeki ana şube işaretini kaldırır.
// "Restoran başına en fazla bir ana şube" invariant'ı; primary tedarikçi
// ile aynı desen, temizle-sonra-işaretle tek transaction'da.
func setMainBranch(tx *gorm.DB, restaurantID, branchID uint) error {
	return tx.Model(&models.Branch{}).
		Where("restaurant_id = ? AND id <> ? AND is_main_branch = ?", restaurantID, branchID, true).
		Update("is_main_branch", false).Error
}

// POST /api/branches
func CreateBranchHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.RestaurantID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id ve şube adı zorunlu")
		}

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Restoran bulunamadı")
		}

		// Restoranın ilk şubesi her zaman ana şube olur
		var branchCount int64
		if err := db.Model(&models.Branch{}).Where("restaurant_id = ?", body.RestaurantID).
			Count(&branchCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler sorgulanamadı")
		}

		branch := models.Branch{
			RestaurantID: body.RestaurantID,
			Name:         body.Name,
			Address:      body.Address,
			IsMainBranch: body.IsMainBranch || branchCount == 0,
			IsActive:     true,
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&branch).Error; err != nil {
				return err
			}
			if branch.IsMainBranch {
				if err := setMainBranch(tx, branch.RestaurantID, branch.ID); err != nil {
					return err
				}
			}
			setting := models.BranchSetting{
				BranchID:    branch.ID,
				OpeningTime: "09:00",
				ClosingTime: "23:00",
			}
			return tx.Create(&setting).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toBranchResponse(&branch))
	}
}

// GET /api/branches?restaurant_id=
func ListBranchesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Branch{})
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}

		var branches []models.Branch
		if err := q.Order("is_main_branch DESC, name ASC").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}

		resp := make([]BranchResponse, 0, len(branches))
		for i := range branches {
			resp = append(resp, toBranchResponse(&branches[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/branches/:id
func GetBranchHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := db.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}
		return c.JSON(toBranchResponse(&branch))
	}
}

// PUT /api/branches/:id
func UpdateBranchHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := db.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
			}
			branch.Name = name
		}
		if body.Address != nil {
			branch.Address = *body.Address
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.IsActive != nil {
			branch.IsActive = *body.IsActive
		}

		makeMain := body.IsMainBranch != nil && *body.IsMainBranch && !branch.IsMainBranch
		if body.IsMainBranch != nil && !*body.IsMainBranch && branch.IsMainBranch {
			return fiber.NewError(fiber.StatusBadRequest, "Ana şube işareti doğrudan kaldırılamaz, başka bir şubeyi ana şube yapın")
		}
		if makeMain {
			branch.IsMainBranch = true
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if makeMain {
				if err := setMainBranch(tx, branch.RestaurantID, branch.ID); err != nil {
					return err
				}
			}
			return tx.Save(&branch).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube güncellenemedi")
		}

		return c.JSON(toBranchResponse(&branch))
	}
}

// DELETE /api/branches/:id
func DeleteBranchHandler(engine *cascade.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Şube ID geçersiz")
		}

		if err := engine.DeleteBranch(uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toBranchResponse(b *models.Branch) BranchResponse {
	return BranchResponse{
		ID:           b.ID,
		RestaurantID: b.RestaurantID,
		Name:         b.Name,
		Address:      b.Address,
		Phone:        b.Phone,
		IsMainBranch: b.IsMainBranch,
		IsActive:     b.IsActive,
		CreatedAt:    b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
