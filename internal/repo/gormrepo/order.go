package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func loadOrder(db *gorm.DB, column, value string) (*models.Order, error) {
	var o models.Order
	if err := db.Preload("Items", orderedItems).Where(column+" = ?", value).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := loadOrder(r.DB.WithContext(ctx), "id", id)
	return o, translate(err)
}

func (r *GormRepo) GetOrderByUser(ctx context.Context, userID string) (*models.Order, error) {
	o, err := loadOrder(r.DB.WithContext(ctx), "user_id", userID)
	return o, translate(err)
}

func (r *GormRepo) ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", orderedItems).
		Order("created_at, id").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.Version == 0 {
		o.Version = 1
	}
	for i := range o.Items {
		o.Items[i].Position = i
	}
	return translate(r.DB.WithContext(ctx).Create(o).Error)
}

func (r *GormRepo) SaveOrder(ctx context.Context, o *models.Order) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ? AND version = ?", o.ID, o.Version).
			Update("version", o.Version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return versionMiss(tx, &models.Order{}, o.ID)
		}

		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if len(o.Items) == 0 {
			return nil
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			o.Items[i].Position = i
		}
		return tx.Create(&o.Items).Error
	})
	if err != nil {
		return translate(err)
	}
	o.Version++
	return nil
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id string) error {
	return translate(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	}))
}
