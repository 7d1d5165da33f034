package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Create(t).Error)
}

func (r *GormRepo) GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).Where("jti = ?", jti).Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GormRepo) RevokeUserTokens(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("jti = ?", oldJTI).First(&old).Error; err != nil {
			return err
		}
		if old.Revoked || old.ExpiresAt.Before(time.Now()) {
			return repo.ErrTokenRevoked
		}
		if err := tx.Model(&old).Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	}))
}
