package gormrepo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return r.pageProducts(r.DB.WithContext(ctx), offset, limit)
}

// SearchProducts is a case-insensitive substring match over name and
// description, used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	db := r.DB.WithContext(ctx).Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	return r.pageProducts(db, offset, limit)
}

func (r *GormRepo) pageProducts(db *gorm.DB, offset, limit int) (int64, []models.Product, error) {
	db = db.Model(&models.Product{}).Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var products []models.Product
	if err := db.Order("created_at, id").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return 0, nil, err
	}
	return total, products, nil
}

func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at", "availability").Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GormRepo) SetAvailability(ctx context.Context, id string, availability int) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("availability", availability)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GormRepo) AdjustAvailability(ctx context.Context, id string, delta int) error {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("availability >= ?", -delta)
	}
	res := q.Update("availability", gorm.Expr("availability + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrInsufficientStock
}
