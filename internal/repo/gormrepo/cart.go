package gormrepo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func loadCart(db *gorm.DB, column, value string) (*models.Cart, error) {
	var c models.Cart
	if err := db.Preload("Items", orderedItems).Where(column+" = ?", value).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	c, err := loadCart(r.DB.WithContext(ctx), "id", id)
	return c, translate(err)
}

func (r *GormRepo) GetCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := loadCart(r.DB.WithContext(ctx), "user_id", userID)
	return c, translate(err)
}

func (r *GormRepo) ListCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Cart{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var carts []models.Cart
	if err := r.DB.WithContext(ctx).Preload("Items", orderedItems).
		Order("created_at, id").Offset(offset).Limit(limit).Find(&carts).Error; err != nil {
		return 0, nil, err
	}
	return total, carts, nil
}

func (r *GormRepo) AppendCartItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	var out *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh := models.Cart{UserID: userID, GrandTotal: decimal.Zero}
			if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
				Create(&fresh).Error; err != nil {
				return err
			}
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&cart).Error
		}
		if err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&n).Error; err != nil {
			return err
		}
		item.ID = ""
		item.CartID = cart.ID
		item.Position = int(n)
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]any{
			"grand_total": gorm.Expr("grand_total + ?", item.Total),
			"version":     gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}

		out, err = loadCart(tx, "id", cart.ID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *GormRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cart{}).Where("id = ? AND version = ?", cart.ID, cart.Version).Updates(map[string]any{
			"grand_total": cart.GrandTotal,
			"version":     cart.Version + 1,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return versionMiss(tx, &models.Cart{}, cart.ID)
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Position = i
		}
		return tx.Create(&cart.Items).Error
	})
	if err != nil {
		return translate(err)
	}
	cart.Version++
	return nil
}

func (r *GormRepo) DeleteCart(ctx context.Context, id string) error {
	return translate(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Cart{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	}))
}
