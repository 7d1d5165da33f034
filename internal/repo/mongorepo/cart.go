package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *MongoRepo) findCart(ctx context.Context, filter bson.M) (*models.Cart, error) {
	var d cartDoc
	if err := r.col(colCarts).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	c := d.model()
	return &c, nil
}

func (r *MongoRepo) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	return r.findCart(ctx, bson.M{"_id": id})
}

func (r *MongoRepo) GetCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.findCart(ctx, bson.M{"user_id": userID})
}

func (r *MongoRepo) ListCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error) {
	total, err := r.col(colCarts).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, nil, err
	}
	cur, err := r.col(colCarts).Find(ctx, bson.M{}, pageOptions(offset, limit))
	if err != nil {
		return 0, nil, err
	}
	var docs []cartDoc
	if err := cur.All(ctx, &docs); err != nil {
		return 0, nil, err
	}
	carts := make([]models.Cart, len(docs))
	for i, d := range docs {
		carts[i] = d.model()
	}
	return total, carts, nil
}

// AppendCartItem is a single upsert: $push the line and $inc the grand total.
// A concurrent first insert for the same user loses the unique index race and
// is retried once as a plain update.
func (r *MongoRepo) AppendCartItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	line := newCartItemDoc(item)
	update := bson.M{
		"$push": bson.M{"items": line},
		"$inc":  bson.M{"grand_total": line.Total, "version": 1},
		"$set":  bson.M{"updated_at": now()},
		"$setOnInsert": bson.M{
			"_id":        models.NewID(),
			"user_id":    userID,
			"created_at": now(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var d cartDoc
	err := r.col(colCarts).FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&d)
	if mongo.IsDuplicateKeyError(err) {
		err = r.col(colCarts).FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&d)
	}
	if err != nil {
		return nil, translate(err)
	}
	c := d.model()
	return &c, nil
}

func (r *MongoRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	for i := range cart.Items {
		if cart.Items[i].ID == "" {
			cart.Items[i].ID = models.NewID()
		}
	}
	res, err := r.col(colCarts).UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{"$set": bson.M{
			"items":       cartItemDocs(cart.Items),
			"grand_total": toDecimal128(cart.GrandTotal),
			"version":     cart.Version + 1,
			"updated_at":  now(),
		}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return r.versionMiss(ctx, colCarts, cart.ID)
	}
	cart.Version++
	return nil
}

func (r *MongoRepo) DeleteCart(ctx context.Context, id string) error {
	res, err := r.col(colCarts).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
