package admin

import (
	"errors"
	"strings"

	"restopos-backend/internal/cascade"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID           uint            `json:"id"`
	RestaurantID *uint           `json:"restaurant_id"`
	BranchID     *uint           `json:"branch_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
}

type CreateUserRequest struct {
	RestaurantID *uint           `json:"restaurant_id"`
	BranchID     *uint           `json:"branch_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	Role         models.UserRole `json:"role"`
}

type UpdateUserRequest struct {
	Name     *string          `json:"name"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role"`
	BranchID *uint            `json:"branch_id"`
	IsActive *bool            `json:"is_active"`
}

type SetPermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

func validRole(r models.UserRole) bool {
	switch r {
	case models.RoleSuperAdmin, models.RoleRestaurantAdmin, models.RoleBranchUser:
		return true
	}
	return false
}

// POST /api/users
func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, e-posta ve şifre zorunlu")
		}
		if len(body.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
		}
		if !validRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
		}
		if body.Role != models.RoleSuperAdmin && body.RestaurantID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu rol için restaurant_id zorunlu")
		}
		if body.Role == models.RoleBranchUser && body.BranchID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Şube kullanıcısı için branch_id zorunlu")
		}

		var existing models.User
		if err := db.First(&existing, "email = ?", body.Email).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Bu e-posta ile kayıtlı kullanıcı var")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı kontrolü yapılamadı")
		}

		if body.RestaurantID != nil {
			var restaurant models.Restaurant
			if err := db.First(&restaurant, "id = ?", *body.RestaurantID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Restoran bulunamadı")
			}
		}
		if body.BranchID != nil {
			var branch models.Branch
			if err := db.First(&branch, "id = ?", *body.BranchID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Şube bulunamadı")
			}
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
		}

		user := models.User{
			RestaurantID: body.RestaurantID,
			BranchID:     body.BranchID,
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hashed),
			Role:         body.Role,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// GET /api/users?restaurant_id=&branch_id=
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.User{})
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}
		if v := c.Query("branch_id"); v != "" {
			q = q.Where("branch_id = ?", v)
		}

		var users []models.User
		if err := q.Order("name ASC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		resp := make([]UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, toUserResponse(&users[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/users/:id
func UpdateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "İsim boş olamaz")
			}
			user.Name = name
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
			}
			user.PasswordHash = string(hashed)
		}
		if body.Role != nil {
			if !validRole(*body.Role) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
			}
			user.Role = *body.Role
		}
		if body.BranchID != nil {
			var branch models.Branch
			if err := db.First(&branch, "id = ?", *body.BranchID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Şube bulunamadı")
			}
			user.BranchID = body.BranchID
		}
		if body.IsActive != nil {
			user.IsActive = *body.IsActive
		}

		if err := db.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}
		return c.JSON(toUserResponse(&user))
	}
}

// DELETE /api/users/:id
// Kullanıcı ve bağlı izin/şube/refresh token kayıtları tek transaction
// içinde silinir.
func DeleteUserHandler(eng *cascade.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kullanıcı id")
		}
		if err := eng.DeleteUser(uint(id)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Kullanıcı silindi"})
	}
}

// PUT /api/users/:id/permissions
// Mevcut izin seti tamamen yenisiyle değiştirilir.
func SetUserPermissionsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var body SetPermissionsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if len(body.PermissionIDs) > 0 {
			var count int64
			if err := db.Model(&models.Permission{}).
				Where("id IN ?", body.PermissionIDs).
				Count(&count).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "İzinler kontrol edilemedi")
			}
			if count != int64(len(body.PermissionIDs)) {
				return fiber.NewError(fiber.StatusBadRequest, "Listedeki bazı izinler bulunamadı")
			}
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", user.ID).
				Delete(&models.UserPermission{}).Error; err != nil {
				return err
			}
			for _, pid := range body.PermissionIDs {
				up := models.UserPermission{UserID: user.ID, PermissionID: pid}
				if err := tx.Create(&up).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzinler güncellenemedi")
		}

		return c.JSON(fiber.Map{"message": "İzinler güncellendi"})
	}
}

// GET /api/users/:id/permissions
func ListUserPermissionsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var permissions []models.Permission
		if err := db.Where("id IN (?)",
			db.Model(&models.UserPermission{}).Select("permission_id").Where("user_id = ?", user.ID)).
			Find(&permissions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzinler listelenemedi")
		}
		return c.JSON(permissions)
	}
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		RestaurantID: u.RestaurantID,
		BranchID:     u.BranchID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
