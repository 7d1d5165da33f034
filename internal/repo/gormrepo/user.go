package gormrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at, id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// UpdateUser writes profile fields only; favourites and orders have their own
// set operations.
func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(u).
		Select("full_name", "password_hash", "gender", "addresses").
		Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GormRepo) AddFavourite(ctx context.Context, userID, productID string) (*models.User, error) {
	return r.mutateUserSet(ctx, userID, "favourites", func(u *models.User) bool {
		return u.Favourites.Add(productID)
	})
}

func (r *GormRepo) RemoveFavourite(ctx context.Context, userID, productID string) (*models.User, error) {
	return r.mutateUserSet(ctx, userID, "favourites", func(u *models.User) bool {
		return u.Favourites.Remove(productID)
	})
}

func (r *GormRepo) AddUserOrder(ctx context.Context, userID, orderID string) error {
	_, err := r.mutateUserSet(ctx, userID, "orders", func(u *models.User) bool {
		return u.Orders.Add(orderID)
	})
	return err
}

func (r *GormRepo) mutateUserSet(ctx context.Context, userID, column string, mutate func(*models.User) bool) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&u).Error; err != nil {
			return err
		}
		if !mutate(&u) {
			return nil
		}
		return tx.Model(&u).Select(column).Updates(&u).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
