package inventory

import (
	"errors"
	"strconv"
	"time"

	"restopos-backend/internal/auth"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockResponse struct {
	ID                uint    `json:"id"`
	ProductID         uint    `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Unit              string  `json:"unit"`
	BranchID          uint    `json:"branch_id"`
	Quantity          float64 `json:"quantity"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	ExpirationDate    *string `json:"expiration_date,omitempty"`
	LastStockUpdate   string  `json:"last_stock_update"`
}

type CreateStockRequest struct {
	ProductID         uint    `json:"product_id"`
	BranchID          *uint   `json:"branch_id"` // super_admin / restaurant_admin için
	Quantity          float64 `json:"quantity"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	ExpirationDate    *string `json:"expiration_date"` // "2026-01-31"
}

type AdjustStockRequest struct {
	Type     string  `json:"type"` // IN | OUT | ADJUSTMENT
	Quantity float64 `json:"quantity"`
	Note     string  `json:"note"`
}

type TransferRequest struct {
	FromBranchID uint    `json:"from_branch_id"`
	ToBranchID   uint    `json:"to_branch_id"`
	ProductID    uint    `json:"product_id"`
	Quantity     float64 `json:"quantity"`
}

type CountRequest struct {
	BranchID *uint              `json:"branch_id"`
	Lines    []CountLineRequest `json:"lines"`
}

type CountLineRequest struct {
	StockID         uint    `json:"stock_id"`
	CountedQuantity float64 `json:"counted_quantity"`
}

type StockHistoryResponse struct {
	ID        uint    `json:"id"`
	StockID   uint    `json:"stock_id"`
	Type      string  `json:"type"`
	Quantity  float64 `json:"quantity"`
	Note      string  `json:"note"`
	CreatedBy uint    `json:"created_by"`
	CreatedAt string  `json:"created_at"`
}

// Yardımcı: istekteki şubeyi çöz. branch_user kendi şubesine kilitli;
// diğer roller body/query ile şube seçebilir.
func resolveBranchID(c *fiber.Ctx, explicit *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchUser {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi alınamadı")
		}
		return *bPtr, nil
	}

	if explicit == nil || *explicit == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	return *explicit, nil
}

func branchIDFromQuery(c *fiber.Ctx) (uint, error) {
	var explicit *uint
	if q := c.Query("branch_id"); q != "" {
		v, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
		}
		u := uint(v)
		explicit = &u
	}
	return resolveBranchID(c, explicit)
}

// GET /api/stocks?branch_id=
func ListStocksHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := branchIDFromQuery(c)
		if err != nil {
			return err
		}

		var stocks []models.Stock
		if err := db.
			Preload("Product").
			Where("branch_id = ?", branchID).
			Order("id ASC").
			Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		resp := make([]StockResponse, 0, len(stocks))
		for _, s := range stocks {
			resp = append(resp, toStockResponse(&s))
		}
		return c.JSON(resp)
	}
}

// POST /api/stocks
// Ürün şubede ilk kez stoklanırken kaydı açar.
func CreateStockHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Quantity < 0 || body.LowStockThreshold < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity ve low_stock_threshold negatif olamaz")
		}

		branchID, err := resolveBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := db.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}
		var branch models.Branch
		if err := db.First(&branch, "id = ?", branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Şube bulunamadı")
		}

		stock := models.Stock{
			ProductID:         body.ProductID,
			BranchID:          branchID,
			Quantity:          body.Quantity,
			LowStockThreshold: body.LowStockThreshold,
			LastStockUpdate:   time.Now(),
		}
		if body.ExpirationDate != nil {
			d, err := time.Parse("2006-01-02", *body.ExpirationDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			stock.ExpirationDate = &d
		}

		if err := db.Create(&stock).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Stok kaydı oluşturulamadı (ürün bu şubede zaten stoklu olabilir)")
		}

		stock.Product = product
		return c.Status(fiber.StatusCreated).JSON(toStockResponse(&stock))
	}
}

// POST /api/stocks/:id/adjust
func AdjustStockHandler(engine *Engine, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stockID, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Stok ID geçersiz")
		}

		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		stock, err := engine.AdjustStock(uint(stockID), models.StockMovementType(body.Type), body.Quantity, userID, body.Note)
		if err != nil {
			return err
		}

		// Product preload engine'de yok, yanıt için ayrıca çek
		_ = db.Preload("Product").First(stock, "id = ?", stock.ID).Error
		return c.JSON(toStockResponse(stock))
	}
}

// POST /api/stocks/transfer
func TransferHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ProductID == 0 || body.FromBranchID == 0 || body.ToBranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id, from_branch_id ve to_branch_id zorunlu")
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		result, err := engine.Transfer(body.FromBranchID, body.ToBranchID, body.ProductID, body.Quantity, userID)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"source":      toStockResponse(&result.Source),
			"destination": toStockResponse(&result.Destination),
		})
	}
}

// POST /api/stocks/count
func CountHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branchID, err := resolveBranchID(c, body.BranchID)
		if err != nil {
			return err
		}
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		lines := make([]CountLine, 0, len(body.Lines))
		for _, l := range body.Lines {
			lines = append(lines, CountLine{StockID: l.StockID, CountedQuantity: l.CountedQuantity})
		}

		if err := engine.ReconcileCount(branchID, userID, lines); err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"branch_id":  branchID,
			"line_count": len(lines),
		})
	}
}

// GET /api/stocks/low?branch_id=
func LowStockHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := branchIDFromQuery(c)
		if err != nil {
			return err
		}

		stocks, err := engine.LowStock(branchID)
		if err != nil {
			return err
		}

		resp := make([]StockResponse, 0, len(stocks))
		for _, s := range stocks {
			resp = append(resp, toStockResponse(&s))
		}
		return c.JSON(resp)
	}
}

// GET /api/stocks/:id/history
func StockHistoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stockID, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Stok ID geçersiz")
		}

		var stock models.Stock
		if err := db.First(&stock, "id = ?", stockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok sorgulanamadı")
		}

		var entries []models.StockHistory
		if err := db.
			Where("stock_id = ?", stockID).
			Order("created_at DESC, id DESC").
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri listelenemedi")
		}

		resp := make([]StockHistoryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, StockHistoryResponse{
				ID:        e.ID,
				StockID:   e.StockID,
				Type:      string(e.Type),
				Quantity:  e.Quantity,
				Note:      e.Note,
				CreatedBy: e.CreatedBy,
				CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

func toStockResponse(s *models.Stock) StockResponse {
	resp := StockResponse{
		ID:                s.ID,
		ProductID:         s.ProductID,
		ProductName:       s.Product.Name,
		Unit:              s.Product.Unit,
		BranchID:          s.BranchID,
		Quantity:          s.Quantity,
		LowStockThreshold: s.LowStockThreshold,
		LastStockUpdate:   s.LastStockUpdate.Format("2006-01-02 15:04:05"),
	}
	if s.ExpirationDate != nil {
		d := s.ExpirationDate.Format("2006-01-02")
		resp.ExpirationDate = &d
	}
	return resp
}
