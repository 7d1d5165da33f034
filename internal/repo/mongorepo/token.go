package mongorepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *MongoRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	t.CreatedAt = now()
	_, err := r.col(colTokens).InsertOne(ctx, tokenDoc(*t))
	return translate(err)
}

func (r *MongoRepo) GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var d tokenDoc
	if err := r.col(colTokens).FindOne(ctx, bson.M{"_id": jti}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	t := models.RefreshToken(d)
	return &t, nil
}

func (r *MongoRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	res, err := r.col(colTokens).UpdateOne(ctx, bson.M{"_id": jti}, bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) RevokeUserTokens(ctx context.Context, userID string) error {
	_, err := r.col(colTokens).UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}})
	return err
}

// RotateRefreshToken flips revoked with a guarded update so only one caller
// can consume a refresh token.
func (r *MongoRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	err := r.col(colTokens).FindOneAndUpdate(ctx,
		bson.M{"_id": oldJTI, "revoked": false, "expires_at": bson.M{"$gt": now()}},
		bson.M{"$set": bson.M{"revoked": true}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.col(colTokens).CountDocuments(ctx, bson.M{"_id": oldJTI})
		if cerr != nil {
			return cerr
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrTokenRevoked
	}
	if err != nil {
		return err
	}
	return r.SaveRefreshToken(ctx, next)
}
