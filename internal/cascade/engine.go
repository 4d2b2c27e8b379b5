package cascade

import (
	"errors"

	"restopos-backend/internal/apperr"
	"restopos-backend/internal/models"

	"gorm.io/gorm"
)

// Engine: agrega köklerini (Restaurant, Branch, Category, User) tüm
// bağımlılarıyla birlikte tek transaction içinde siler. Silme sırası
// order.go'daki bağımlılık tablosundan türetilir; hiçbir ara adımda
// yabancı anahtar açıkta kalmaz, hata olursa hiçbir satır silinmemiş olur.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

func (e *Engine) DeleteRestaurant(id uint) error {
	var restaurant models.Restaurant
	if err := e.db.First(&restaurant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Restoran bulunamadı (ID: %d)", id)
		}
		return apperr.Fatal("restoran sorgulanamadı", err)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubtree(tx, tableRestaurants, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Restaurant{}, "id = ?", id).Error; err != nil {
			return apperr.Fatal("restoran silinemedi", err)
		}
		return nil
	})
}

func (e *Engine) DeleteBranch(id uint) error {
	// Varlık kontrolü ve ana şube kuralı da transaction içinde koşar;
	// kontrol ile silme arasında araya başka bir yazma giremez.
	return e.db.Transaction(func(tx *gorm.DB) error {
		var branch models.Branch
		if err := tx.First(&branch, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Şube bulunamadı (ID: %d)", id)
			}
			return apperr.Fatal("şube sorgulanamadı", err)
		}

		// Ana şube, restoranın başka şubesi varken silinemez; önce başka
		// bir şube ana şube yapılmalı.
		if branch.IsMainBranch {
			var others int64
			if err := tx.Model(&models.Branch{}).
				Where("restaurant_id = ? AND id <> ?", branch.RestaurantID, branch.ID).
				Count(&others).Error; err != nil {
				return apperr.Fatal("şubeler sorgulanamadı", err)
			}
			if others > 0 {
				return apperr.Validation("Ana şube silinemez, önce başka bir şubeyi ana şube yapın")
			}
		}

		if err := deleteSubtree(tx, tableBranches, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Branch{}, "id = ?", id).Error; err != nil {
			return apperr.Fatal("şube silinemedi", err)
		}
		return nil
	})
}

func (e *Engine) DeleteCategory(id uint) error {
	var category models.Category
	if err := e.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Kategori bulunamadı (ID: %d)", id)
		}
		return apperr.Fatal("kategori sorgulanamadı", err)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubtree(tx, tableCategories, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return apperr.Fatal("kategori silinemedi", err)
		}
		return nil
	})
}

func (e *Engine) DeleteUser(id uint) error {
	var user models.User
	if err := e.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Kullanıcı bulunamadı (ID: %d)", id)
		}
		return apperr.Fatal("kullanıcı sorgulanamadı", err)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubtree(tx, tableUsers, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return apperr.Fatal("kullanıcı silinemedi", err)
		}
		return nil
	})
}

// deleteSubtree: parent tablosundaki parentIDs satırlarına (doğrudan ya da
// geçişli olarak) bağlı tüm satırları derinlik öncelikli siler. Her bağımlı
// için önce onun kendi alt ağacı, üst satırlar hâlâ yerindeyken subquery ile
// daraltılarak silinir. Aynı tabloya birden fazla yoldan ulaşılırsa ikinci
// silme sıfır satır etkiler, sorun değil.
//
// parentIDs []uint (kök çağrı) veya subquery (*gorm.DB) olabilir; GORM her
// ikisini de IN (?) içinde kabul eder.
func deleteSubtree(tx *gorm.DB, parentTable string, parentIDs any) error {
	// Silinecek satırlara dışarıdan bakan opsiyonel kolonlar önce koparılır,
	// yoksa üst satırın silinmesi FK ihlaline takılır.
	for _, d := range detach[parentTable] {
		if err := tx.Model(d.model).
			Where(d.fk+" IN (?)", parentIDs).
			Update(d.fk, nil).Error; err != nil {
			return apperr.Fatal(d.table+" bağları koparılamadı", err)
		}
	}
	for _, dep := range graph[parentTable] {
		if len(graph[dep.table]) > 0 {
			// Bağımlının kendi bağımlıları var; id'lerini subquery olarak
			// aşağı geçir. (Bileşik anahtarlı tabloların graph'ta alt
			// bağımlısı yok, bu dala hiç girmezler.)
			sub := tx.Session(&gorm.Session{NewDB: true}).
				Model(dep.model).
				Select("id").
				Where(dep.fk+" IN (?)", parentIDs)
			if err := deleteSubtree(tx, dep.table, sub); err != nil {
				return err
			}
		}
		if err := tx.Where(dep.fk+" IN (?)", parentIDs).Delete(dep.model).Error; err != nil {
			// Buraya düşen FK ihlali, graph'taki eksik bir bağımlılığı işaret
			// eder; maskelenmeden yukarı taşınır.
			return apperr.Fatal(dep.table+" bağımlıları silinemedi", err)
		}
	}
	return nil
}
