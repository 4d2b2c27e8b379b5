package purchase

import (
	"strconv"
	"time"

	"restopos-backend/internal/auth"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ItemRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type CreateOrderRequest struct {
	SupplierID           uint          `json:"supplier_id"`
	RestaurantID         uint          `json:"restaurant_id"`
	BranchID             uint          `json:"branch_id"`
	OrderDate            string        `json:"order_date"` // "2025-12-09", boşsa bugün
	ExpectedDeliveryDate *string       `json:"expected_delivery_date"`
	Notes                string        `json:"notes"`
	Items                []ItemRequest `json:"items"`
}

type UpdateOrderRequest struct {
	Notes                *string       `json:"notes"`
	ExpectedDeliveryDate *string       `json:"expected_delivery_date"`
	Items                []ItemRequest `json:"items"` // nil ise kalemler değişmez
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type OrderResponse struct {
	ID                   uint           `json:"id"`
	OrderNumber          string         `json:"order_number"`
	SupplierID           uint           `json:"supplier_id"`
	SupplierName         string         `json:"supplier_name"`
	RestaurantID         uint           `json:"restaurant_id"`
	BranchID             uint           `json:"branch_id"`
	Status               string         `json:"status"`
	TotalAmount          float64        `json:"total_amount"`
	OrderDate            string         `json:"order_date"`
	ExpectedDeliveryDate *string        `json:"expected_delivery_date,omitempty"`
	Notes                string         `json:"notes"`
	Items                []ItemResponse `json:"items"`
	CreatedAt            string         `json:"created_at"`
}

func toItemInputs(items []ItemRequest) []ItemInput {
	if items == nil {
		return nil
	}
	in := make([]ItemInput, 0, len(items))
	for _, item := range items {
		in = append(in, ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return in
}

// POST /api/purchase-orders
func CreateOrderHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.SupplierID == 0 || body.RestaurantID == 0 || body.BranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id, restaurant_id ve branch_id zorunlu")
		}

		orderDate := time.Now()
		if body.OrderDate != "" {
			d, err := time.Parse("2006-01-02", body.OrderDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			orderDate = d
		}

		var expected *time.Time
		if body.ExpectedDeliveryDate != nil && *body.ExpectedDeliveryDate != "" {
			d, err := time.Parse("2006-01-02", *body.ExpectedDeliveryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Teslim tarihi formatı 'YYYY-MM-DD' olmalı")
			}
			expected = &d
		}

		order, err := engine.Create(CreateInput{
			SupplierID:           body.SupplierID,
			RestaurantID:         body.RestaurantID,
			BranchID:             body.BranchID,
			OrderDate:            orderDate,
			ExpectedDeliveryDate: expected,
			Notes:                body.Notes,
			Items:                toItemInputs(body.Items),
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// GET /api/purchase-orders?restaurant_id=&branch_id=&supplier_id=&status=
func ListOrdersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.PurchaseOrder{}).
			Preload("Items").Preload("Items.Product").Preload("Supplier")

		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}
		if v := c.Query("branch_id"); v != "" {
			q = q.Where("branch_id = ?", v)
		}
		if v := c.Query("supplier_id"); v != "" {
			q = q.Where("supplier_id = ?", v)
		}
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}

		var orders []models.PurchaseOrder
		if err := q.Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/purchase-orders/:id
func GetOrderHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş ID geçersiz")
		}

		order, err := engine.Get(uint(id))
		if err != nil {
			return err
		}
		return c.JSON(toOrderResponse(order))
	}
}

// PUT /api/purchase-orders/:id
func UpdateOrderHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş ID geçersiz")
		}

		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var expected *time.Time
		if body.ExpectedDeliveryDate != nil && *body.ExpectedDeliveryDate != "" {
			d, err := time.Parse("2006-01-02", *body.ExpectedDeliveryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Teslim tarihi formatı 'YYYY-MM-DD' olmalı")
			}
			expected = &d
		}

		order, err := engine.Update(uint(id), UpdateInput{
			Notes:                body.Notes,
			ExpectedDeliveryDate: expected,
			Items:                toItemInputs(body.Items),
		})
		if err != nil {
			return err
		}
		return c.JSON(toOrderResponse(order))
	}
}

// PUT /api/purchase-orders/:id/status
func UpdateStatusHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş ID geçersiz")
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil || body.Status == "" {
			return fiber.NewError(fiber.StatusBadRequest, "status zorunlu")
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		order, err := engine.UpdateStatus(uint(id), models.PurchaseOrderStatus(body.Status), userID)
		if err != nil {
			return err
		}
		return c.JSON(toOrderResponse(order))
	}
}

// DELETE /api/purchase-orders/:id
func DeleteOrderHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş ID geçersiz")
		}

		if err := engine.Delete(uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toOrderResponse(o *models.PurchaseOrder) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	resp := OrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		SupplierName: o.Supplier.Name,
		RestaurantID: o.RestaurantID,
		BranchID:     o.BranchID,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount,
		OrderDate:    o.OrderDate.Format("2006-01-02"),
		Notes:        o.Notes,
		Items:        items,
		CreatedAt:    o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.ExpectedDeliveryDate != nil {
		d := o.ExpectedDeliveryDate.Format("2006-01-02")
		resp.ExpectedDeliveryDate = &d
	}
	return resp
}
