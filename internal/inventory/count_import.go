package inventory

import (
	"strconv"
	"strings"

	"restopos-backend/internal/auth"
	"restopos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// normalizeTurkish: Türkçe karakterleri ASCII karşılıklarına çevirir.
// Örn: "SÜT ÜRÜNLERİ" -> "sut urunleri"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(result.String())
}

type CountImportResponse struct {
	BranchID  uint     `json:"branch_id"`
	Matched   int      `json:"matched"`
	Unmatched []string `json:"unmatched"` // eşleşmeyen satırların ürün adı/stok kodu
}

// POST /api/stocks/count/import
// XLSX dosyasından stok sayımı: ilk kolon stok kodu veya ürün adı,
// ikinci kolon sayılan miktar. Eşleşen satırlar tek seferde
// ReconcileCount'a verilir; biri bile geçersizse hiçbiri uygulanmaz.
func CountImportHandler(engine *Engine, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var explicit *uint
		if q := c.Query("branch_id"); q != "" {
			v, err := strconv.ParseUint(q, 10, 32)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			u := uint(v)
			explicit = &u
		}
		branchID, err := resolveBranchID(c, explicit)
		if err != nil {
			return err
		}
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}
		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// Şubenin stoklarını ürün bilgisiyle çek, stok kodu ve
		// normalize edilmiş isim üzerinden eşleştirme haritası kur
		var stocks []models.Stock
		if err := db.Preload("Product").Where("branch_id = ?", branchID).Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		byCode := make(map[string]uint)
		byName := make(map[string]uint)
		for _, s := range stocks {
			if s.Product.StockCode != "" {
				byCode[strings.ToUpper(strings.TrimSpace(s.Product.StockCode))] = s.ID
			}
			byName[normalizeTurkish(strings.TrimSpace(s.Product.Name))] = s.ID
		}

		// İlk satır başlık olabilir ("ÜRÜN", "STOK", "PRODUCT" vs.)
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "ÜRÜN") || strings.Contains(firstCell, "STOK") ||
				strings.Contains(firstCell, "PRODUCT") {
				startIndex = 1
			}
		}

		var lines []CountLine
		unmatched := make([]string, 0)
		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) < 2 {
				continue
			}
			key := strings.TrimSpace(row[0])
			if key == "" {
				continue
			}

			qty, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[1]), ",", "."), 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Miktar sayısal olmalı (satır "+strconv.Itoa(i+1)+")")
			}

			stockID, ok := byCode[strings.ToUpper(key)]
			if !ok {
				stockID, ok = byName[normalizeTurkish(key)]
			}
			if !ok {
				unmatched = append(unmatched, key)
				continue
			}
			lines = append(lines, CountLine{StockID: stockID, CountedQuantity: qty})
		}

		if len(lines) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Dosyada eşleşen sayım satırı bulunamadı")
		}

		if err := engine.ReconcileCount(branchID, userID, lines); err != nil {
			return err
		}

		return c.JSON(CountImportResponse{
			BranchID:  branchID,
			Matched:   len(lines),
			Unmatched: unmatched,
		})
	}
}
