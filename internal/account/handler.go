package account

import (
	"time"

	"restopos-backend/internal/auth"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TransactionResponse struct {
	ID           uint                          `json:"id"`
	RestaurantID uint                          `json:"restaurant_id"`
	BranchID     *uint                         `json:"branch_id"`
	OrderID      *uint                         `json:"order_id"`
	Type         models.AccountTransactionType `json:"type"`
	Amount       float64                       `json:"amount"`
	Description  string                        `json:"description"`
	Date         string                        `json:"date"`
	CreatedBy    uint                          `json:"created_by"`
}

type CreateTransactionRequest struct {
	RestaurantID uint                          `json:"restaurant_id"`
	BranchID     *uint                         `json:"branch_id"`
	Type         models.AccountTransactionType `json:"type"`
	Amount       float64                       `json:"amount"`
	Description  string                        `json:"description"`
	Date         string                        `json:"date"` // boşsa bugün, format: 2006-01-02
}

type SummaryResponse struct {
	RestaurantID uint    `json:"restaurant_id"`
	TotalCredit  float64 `json:"total_credit"`
	TotalDebit   float64 `json:"total_debit"`
	Balance      float64 `json:"balance"`
}

// POST /api/account-transactions
func CreateTransactionHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.RestaurantID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id zorunlu")
		}
		if body.Type != models.AccountTransactionCredit && body.Type != models.AccountTransactionDebit {
			return fiber.NewError(fiber.StatusBadRequest, "Hareket tipi CREDIT veya DEBIT olmalı")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar sıfırdan büyük olmalı")
		}

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restoran bulunamadı")
		}
		if body.BranchID != nil {
			var branch models.Branch
			if err := db.First(&branch, "id = ? AND restaurant_id = ?", *body.BranchID, body.RestaurantID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Şube bu restorana ait değil")
			}
		}

		date := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 2006-01-02 olmalı")
			}
			date = parsed
		}

		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		trx := models.AccountTransaction{
			RestaurantID: body.RestaurantID,
			BranchID:     body.BranchID,
			Type:         body.Type,
			Amount:       body.Amount,
			Description:  body.Description,
			Date:         date,
			CreatedBy:    userID,
		}
		if err := db.Create(&trx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hareket oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(&trx))
	}
}

// GET /api/account-transactions?restaurant_id=&branch_id=&type=&start=&end=
func ListTransactionsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.AccountTransaction{})
		if v := c.Query("restaurant_id"); v != "" {
			q = q.Where("restaurant_id = ?", v)
		}
		if v := c.Query("branch_id"); v != "" {
			q = q.Where("branch_id = ?", v)
		}
		if v := c.Query("type"); v != "" {
			q = q.Where("type = ?", v)
		}
		if v := c.Query("start"); v != "" {
			q = q.Where("date >= ?", v)
		}
		if v := c.Query("end"); v != "" {
			q = q.Where("date <= ?", v)
		}

		var transactions []models.AccountTransaction
		if err := q.Order("date DESC, id DESC").Find(&transactions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hareketler listelenemedi")
		}

		resp := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			resp = append(resp, toTransactionResponse(&transactions[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/account-transactions/summary?restaurant_id=
func SummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID := c.QueryInt("restaurant_id")
		if restaurantID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id zorunlu")
		}

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restoran bulunamadı")
		}

		sum := func(t models.AccountTransactionType) (float64, error) {
			var total float64
			err := db.Model(&models.AccountTransaction{}).
				Where("restaurant_id = ? AND type = ?", restaurantID, t).
				Select("COALESCE(SUM(amount), 0)").
				Scan(&total).Error
			return total, err
		}

		credit, err := sum(models.AccountTransactionCredit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		debit, err := sum(models.AccountTransactionDebit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		return c.JSON(SummaryResponse{
			RestaurantID: uint(restaurantID),
			TotalCredit:  credit,
			TotalDebit:   debit,
			Balance:      credit - debit,
		})
	}
}

func toTransactionResponse(t *models.AccountTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		RestaurantID: t.RestaurantID,
		BranchID:     t.BranchID,
		OrderID:      t.OrderID,
		Type:         t.Type,
		Amount:       t.Amount,
		Description:  t.Description,
		Date:         t.Date.Format("2006-01-02"),
		CreatedBy:    t.CreatedBy,
	}
}
