package supplier

import (
	"strconv"
	"strings"

	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SupplierResponse struct {
	ID           uint   `json:"id"`
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
}

type CreateSupplierRequest struct {
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
}

type RelationRequest struct {
	ProductID           uint    `json:"product_id"`
	SupplierID          uint    `json:"supplier_id"`
	IsPrimary           bool    `json:"is_primary"`
	LastPurchasePrice   float64 `json:"last_purchase_price"`
	SupplierProductCode string  `json:"supplier_product_code"`
}

type UpdateRelationRequest struct {
	IsPrimary           *bool    `json:"is_primary"`
	LastPurchasePrice   *float64 `json:"last_purchase_price"`
	SupplierProductCode *string  `json:"supplier_product_code"`
}

type RelationResponse struct {
	ProductID           uint    `json:"product_id"`
	SupplierID          uint    `json:"supplier_id"`
	IsPrimary           bool    `json:"is_primary"`
	LastPurchasePrice   float64 `json:"last_purchase_price"`
	SupplierProductCode string  `json:"supplier_product_code"`
}

// ----------------------------------------
// TEDARİKÇİ CRUD
// ----------------------------------------

// POST /api/suppliers
func CreateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.RestaurantID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id ve tedarikçi adı zorunlu")
		}

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Restoran bulunamadı")
		}

		sup := models.Supplier{
			RestaurantID: body.RestaurantID,
			Name:         body.Name,
			ContactName:  strings.TrimSpace(body.ContactName),
			Phone:        strings.TrimSpace(body.Phone),
			Email:        strings.ToLower(strings.TrimSpace(body.Email)),
		}
		if err := db.Create(&sup).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(&sup))
	}
}

// GET /api/suppliers?restaurant_id=
func ListSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Supplier{})
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}

		var suppliers []models.Supplier
		if err := q.Order("name ASC").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			resp = append(resp, toSupplierResponse(&suppliers[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var sup models.Supplier
		if err := db.First(&sup, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi adı boş olamaz")
			}
			sup.Name = name
		}
		if body.ContactName != nil {
			sup.ContactName = strings.TrimSpace(*body.ContactName)
		}
		if body.Phone != nil {
			sup.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			sup.Email = strings.ToLower(strings.TrimSpace(*body.Email))
		}

		if err := db.Save(&sup).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}

		return c.JSON(toSupplierResponse(&sup))
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi ID geçersiz")
		}

		if err := engine.DeleteSupplier(uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ÜRÜN-TEDARİKÇİ İLİŞKİLERİ
// ----------------------------------------

// POST /api/product-suppliers
func CreateRelationHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RelationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		relation, err := engine.CreateRelation(RelationInput{
			ProductID:           body.ProductID,
			SupplierID:          body.SupplierID,
			IsPrimary:           body.IsPrimary,
			LastPurchasePrice:   body.LastPurchasePrice,
			SupplierProductCode: body.SupplierProductCode,
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(toRelationResponse(relation))
	}
}

// GET /api/products/:id/suppliers
func ListProductSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID := c.Params("id")

		var relations []models.ProductSupplier
		if err := db.
			Where("product_id = ?", productID).
			Order("is_primary DESC, supplier_id ASC").
			Find(&relations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İlişkiler listelenemedi")
		}

		resp := make([]RelationResponse, 0, len(relations))
		for i := range relations {
			resp = append(resp, toRelationResponse(&relations[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/product-suppliers/:productId/:supplierId
func UpdateRelationHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err1 := strconv.ParseUint(c.Params("productId"), 10, 32)
		supplierID, err2 := strconv.ParseUint(c.Params("supplierId"), 10, 32)
		if err1 != nil || err2 != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün veya tedarikçi ID geçersiz")
		}

		var body UpdateRelationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		relation, err := engine.UpdateRelation(uint(productID), uint(supplierID), UpdateRelationInput{
			IsPrimary:           body.IsPrimary,
			LastPurchasePrice:   body.LastPurchasePrice,
			SupplierProductCode: body.SupplierProductCode,
		})
		if err != nil {
			return err
		}
		return c.JSON(toRelationResponse(relation))
	}
}

// DELETE /api/product-suppliers/:productId/:supplierId
func DeleteRelationHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err1 := strconv.ParseUint(c.Params("productId"), 10, 32)
		supplierID, err2 := strconv.ParseUint(c.Params("supplierId"), 10, 32)
		if err1 != nil || err2 != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün veya tedarikçi ID geçersiz")
		}

		if err := engine.DeleteRelation(uint(productID), uint(supplierID)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toSupplierResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:           s.ID,
		RestaurantID: s.RestaurantID,
		Name:         s.Name,
		ContactName:  s.ContactName,
		Phone:        s.Phone,
		Email:        s.Email,
		CreatedAt:    s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toRelationResponse(r *models.ProductSupplier) RelationResponse {
	return RelationResponse{
		ProductID:           r.ProductID,
		SupplierID:          r.SupplierID,
		IsPrimary:           r.IsPrimary,
		LastPurchasePrice:   r.LastPurchasePrice,
		SupplierProductCode: r.SupplierProductCode,
	}
}
