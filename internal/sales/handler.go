package sales

import (
	"errors"
	"fmt"
	"time"

	"restopos-backend/internal/auth"
	"restopos-backend/internal/inventory"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Note      string  `json:"note"`
}

type CreateOrderRequest struct {
	RestaurantID uint               `json:"restaurant_id"`
	BranchID     uint               `json:"branch_id"`
	TableNo      string             `json:"table_no"`
	Items        []OrderItemRequest `json:"items"`
}

type OrderItemResponse struct {
	ID         uint    `json:"id"`
	ProductID  uint    `json:"product_id"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	Note       string  `json:"note"`
}

type OrderResponse struct {
	ID           uint                `json:"id"`
	RestaurantID uint                `json:"restaurant_id"`
	BranchID     uint                `json:"branch_id"`
	TableNo      string              `json:"table_no"`
	Status       models.OrderStatus  `json:"status"`
	TotalAmount  float64             `json:"total_amount"`
	OrderDate    string              `json:"order_date"`
	Items        []OrderItemResponse `json:"items"`
}

// deductForProduct: sipariş kalemi için stok düşümü. Ürünün reçetesi varsa
// düşüm hammaddelere dağıtılır, yoksa ürünün kendi stok kaydından düşülür.
func deductForProduct(tx *gorm.DB, eng *inventory.Engine, branchID, productID uint, quantity float64, userID uint, note string) error {
	var recipe models.Recipe
	err := tx.Preload("Items").First(&recipe, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eng.DeductTx(tx, branchID, productID, quantity, userID, note)
		}
		return err
	}
	for _, item := range recipe.Items {
		if err := eng.DeductTx(tx, branchID, item.IngredientProductID, item.Quantity*quantity, userID, note); err != nil {
			return err
		}
	}
	return nil
}

// POST /api/orders
// Sipariş, kalemleri ve stok düşümleri tek transaction içinde yazılır.
func CreateOrderHandler(db *gorm.DB, inv *inventory.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		if body.RestaurantID == 0 || body.BranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id ve branch_id zorunlu")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş en az bir kalem içermeli")
		}
		for _, item := range body.Items {
			if item.ProductID == 0 || item.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Her kalemde product_id ve pozitif quantity zorunlu")
			}
		}

		var branch models.Branch
		if err := db.First(&branch, "id = ? AND restaurant_id = ?", body.BranchID, body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Şube bu restorana ait değil")
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		productIDs := make([]uint, 0, len(body.Items))
		for _, item := range body.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		var products []models.Product
		if err := db.Where("id IN ? AND is_active = ?", productIDs, true).Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler sorgulanamadı")
		}
		priceByID := make(map[uint]float64, len(products))
		for _, p := range products {
			priceByID[p.ID] = p.Price
		}
		for _, item := range body.Items {
			if _, ok := priceByID[item.ProductID]; !ok {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ürün bulunamadı veya pasif (ID: %d)", item.ProductID))
			}
		}

		order := models.Order{
			RestaurantID: body.RestaurantID,
			BranchID:     body.BranchID,
			UserID:       userID,
			TableNo:      body.TableNo,
			Status:       models.OrderStatusOpen,
			OrderDate:    time.Now(),
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			var total float64
			for _, in := range body.Items {
				unitPrice := priceByID[in.ProductID]
				item := models.OrderItem{
					OrderID:    order.ID,
					ProductID:  in.ProductID,
					Quantity:   in.Quantity,
					UnitPrice:  unitPrice,
					TotalPrice: unitPrice * in.Quantity,
					Note:       in.Note,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				total += item.TotalPrice
				order.Items = append(order.Items, item)

				note := fmt.Sprintf("Satış #%d", order.ID)
				if err := deductForProduct(tx, inv, body.BranchID, in.ProductID, in.Quantity, userID, note); err != nil {
					return err
				}
			}
			order.TotalAmount = total
			return tx.Model(&models.Order{}).Where("id = ?", order.ID).
				Update("total_amount", total).Error
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(&order))
	}
}

// GET /api/orders?restaurant_id=&branch_id=&status=
func ListOrdersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Order{}).Preload("Items")
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}
		if v := c.Query("branch_id"); v != "" {
			q = q.Where("branch_id = ?", v)
		}
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}

		var orders []models.Order
		if err := q.Order("order_date DESC").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/orders/:id/pay
// Sipariş kapanır, tahsilat cari harekete yazılır.
func PayOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := db.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}
		if order.Status != models.OrderStatusOpen {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece açık siparişler ödenebilir")
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			order.Status = models.OrderStatusPaid
			if err := tx.Save(&order).Error; err != nil {
				return err
			}
			trx := models.AccountTransaction{
				RestaurantID: order.RestaurantID,
				BranchID:     &order.BranchID,
				OrderID:      &order.ID,
				Type:         models.AccountTransactionCredit,
				Amount:       order.TotalAmount,
				Description:  fmt.Sprintf("Sipariş tahsilatı #%d", order.ID),
				Date:         time.Now(),
				CreatedBy:    userID,
			}
			return tx.Create(&trx).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
		}

		return c.JSON(toOrderResponse(&order))
	}
}

// POST /api/orders/:id/cancel
func CancelOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := db.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}
		if order.Status != models.OrderStatusOpen {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece açık siparişler iptal edilebilir")
		}

		order.Status = models.OrderStatusCancelled
		if err := db.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş iptal edilemedi")
		}
		return c.JSON(toOrderResponse(&order))
	}
}

func toOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			Note:       item.Note,
		})
	}
	return OrderResponse{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		BranchID:     o.BranchID,
		TableNo:      o.TableNo,
		Status:       o.Status,
		TotalAmount:  o.TotalAmount,
		OrderDate:    o.OrderDate.Format("2006-01-02 15:04:05"),
		Items:        items,
	}
}
