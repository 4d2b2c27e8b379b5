package auth

import (
	"strings"
	"time"

	"restopos-backend/internal/config"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type RegisterSuperAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RestaurantID *uint  `json:"restaurant_id"`
	BranchID     *uint  `json:"branch_id"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/register-super-admin
// İlk kurulumda çalışır; sistemde super_admin varsa reddeder.
func RegisterSuperAdminHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var count int64
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar sorgulanamadı")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Super admin zaten tanımlı")
		}

		var body RegisterSuperAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Email == "" || len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email zorunlu; şifre en az 8 karakter olmalı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleSuperAdmin,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "Hesap pasif durumda")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token üretilemedi")
		}

		refresh := models.RefreshToken{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().Add(refreshTokenTTL),
		}
		if err := db.Create(&refresh).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Refresh token kaydedilemedi")
		}

		return c.JSON(LoginResponse{
			Token:        token,
			RefreshToken: refresh.Token,
			User:         toUserResponse(&user),
		})
	}
}

// POST /api/auth/refresh
// Token rotasyonu: eski refresh token revoke edilir, yenisi verilir.
func RefreshHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil || body.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token zorunlu")
		}

		var stored models.RefreshToken
		if err := db.Where("token = ?", body.RefreshToken).First(&stored).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz refresh token")
		}
		if stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) {
			return fiber.NewError(fiber.StatusUnauthorized, "Refresh token geçersiz veya süresi dolmuş")
		}

		var user models.User
		if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı bulunamadı")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token üretilemedi")
		}

		newRefresh := models.RefreshToken{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().Add(refreshTokenTTL),
		}
		now := time.Now()
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&stored).Update("revoked_at", &now).Error; err != nil {
				return err
			}
			return tx.Create(&newRefresh).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Refresh token yenilenemedi")
		}

		return c.JSON(LoginResponse{
			Token:        token,
			RefreshToken: newRefresh.Token,
			User:         toUserResponse(&user),
		})
	}
}

// POST /api/auth/logout
func LogoutHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil || body.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token zorunlu")
		}

		now := time.Now()
		if err := db.Model(&models.RefreshToken{}).
			Where("token = ? AND revoked_at IS NULL", body.RefreshToken).
			Update("revoked_at", &now).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çıkış yapılamadı")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		return c.JSON(toUserResponse(&user))
	}
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		RestaurantID: u.RestaurantID,
		BranchID:     u.BranchID,
	}
}
