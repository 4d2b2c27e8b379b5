package catalog

import (
	"restopos-backend/internal/auth"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DiscountResponse struct {
	ID             uint                `json:"id"`
	OrderID        *uint               `json:"order_id"`
	OrderItemID    *uint               `json:"order_item_id"`
	DiscountType   models.DiscountType `json:"discount_type"`
	DiscountAmount float64             `json:"discount_amount"`
	Description    string              `json:"description"`
	CreatedBy      uint                `json:"created_by"`
	CreatedAt      string              `json:"created_at"`
}

type CreateDiscountRequest struct {
	OrderID        *uint               `json:"order_id"`
	OrderItemID    *uint               `json:"order_item_id"`
	DiscountType   models.DiscountType `json:"discount_type"`
	DiscountAmount float64             `json:"discount_amount"`
	Description    string              `json:"description"`
}

// POST /api/discounts
func CreateDiscountHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDiscountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		switch body.DiscountType {
		case models.DiscountPercentage, models.DiscountFixedAmount, models.DiscountBuyXGetYFree:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz indirim tipi")
		}
		if body.DiscountAmount < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İndirim tutarı negatif olamaz")
		}
		if body.DiscountType == models.DiscountPercentage && body.DiscountAmount > 100 {
			return fiber.NewError(fiber.StatusBadRequest, "Yüzde indirim 100'ü geçemez")
		}
		if body.OrderID == nil && body.OrderItemID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "order_id veya order_item_id zorunlu")
		}

		if body.OrderID != nil {
			var order models.Order
			if err := db.First(&order, "id = ?", *body.OrderID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
			}
		}
		if body.OrderItemID != nil {
			var item models.OrderItem
			if err := db.First(&item, "id = ?", *body.OrderItemID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Sipariş kalemi bulunamadı")
			}
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		discount := models.Discount{
			OrderID:        body.OrderID,
			OrderItemID:    body.OrderItemID,
			DiscountType:   body.DiscountType,
			DiscountAmount: body.DiscountAmount,
			Description:    body.Description,
			CreatedBy:      userID,
		}
		if err := db.Create(&discount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İndirim oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toDiscountResponse(&discount))
	}
}

// GET /api/discounts?order_id=
func ListDiscountsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Discount{})
		if v := c.Query("order_id"); v != "" {
			q = q.Where("order_id = ?", v)
		}

		var discounts []models.Discount
		if err := q.Order("created_at DESC").Find(&discounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İndirimler listelenemedi")
		}

		resp := make([]DiscountResponse, 0, len(discounts))
		for i := range discounts {
			resp = append(resp, toDiscountResponse(&discounts[i]))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/discounts/:id
func DeleteDiscountHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var discount models.Discount
		if err := db.First(&discount, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İndirim bulunamadı")
		}
		if err := db.Delete(&discount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İndirim silinemedi")
		}
		return c.JSON(fiber.Map{"message": "İndirim silindi"})
	}
}

func toDiscountResponse(d *models.Discount) DiscountResponse {
	return DiscountResponse{
		ID:             d.ID,
		OrderID:        d.OrderID,
		OrderItemID:    d.OrderItemID,
		DiscountType:   d.DiscountType,
		DiscountAmount: d.DiscountAmount,
		Description:    d.Description,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
