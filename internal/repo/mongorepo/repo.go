// Package mongorepo stores every aggregate as one document, with cart and
// order lines embedded.
package mongorepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/storefront/internal/repo"
)

const (
	colUsers    = "users"
	colProducts = "products"
	colCarts    = "carts"
	colOrders   = "orders"
	colTokens   = "refresh_tokens"
)

type MongoRepo struct {
	DB *mongo.Database
}

var _ repo.Store = (*MongoRepo)(nil)

func (r *MongoRepo) col(name string) *mongo.Collection { return r.DB.Collection(name) }

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: options.Index().SetUnique(true)}
	}
	specs := map[string][]mongo.IndexModel{
		colUsers:    {unique("email")},
		colCarts:    {unique("user_id")},
		colOrders:   {unique("user_id")},
		colTokens:   {unique("token_hash"), {Keys: bson.D{{Key: "user_id", Value: 1}}}},
		colProducts: {{Keys: bson.D{{Key: "created_at", Value: 1}}}},
	}
	for name, idx := range specs {
		if _, err := r.col(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repo.ErrDuplicate
	}
	return err
}

func pageOptions(offset, limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
}

// versionMiss tells a missing document from a stale version after a guarded
// update matched nothing.
func (r *MongoRepo) versionMiss(ctx context.Context, name, id string) error {
	n, err := r.col(name).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrStaleVersion
}

func now() time.Time { return time.Now().UTC() }
