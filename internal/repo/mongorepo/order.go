package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *MongoRepo) findOrder(ctx context.Context, filter bson.M) (*models.Order, error) {
	var d orderDoc
	if err := r.col(colOrders).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	o := d.model()
	return &o, nil
}

func (r *MongoRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return r.findOrder(ctx, bson.M{"_id": id})
}

func (r *MongoRepo) GetOrderByUser(ctx context.Context, userID string) (*models.Order, error) {
	return r.findOrder(ctx, bson.M{"user_id": userID})
}

func (r *MongoRepo) ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	total, err := r.col(colOrders).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, nil, err
	}
	cur, err := r.col(colOrders).Find(ctx, bson.M{}, pageOptions(offset, limit))
	if err != nil {
		return 0, nil, err
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return 0, nil, err
	}
	orders := make([]models.Order, len(docs))
	for i, d := range docs {
		orders[i] = d.model()
	}
	return total, orders, nil
}

func assignOrderIDs(o *models.Order) {
	if o.ID == "" {
		o.ID = models.NewID()
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = models.NewID()
		}
		o.Items[i].OrderID = o.ID
		o.Items[i].Position = i
	}
}

func (r *MongoRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	assignOrderIDs(o)
	if o.Version == 0 {
		o.Version = 1
	}
	o.CreatedAt, o.UpdatedAt = now(), now()
	_, err := r.col(colOrders).InsertOne(ctx, orderDoc{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     orderItemDocs(o.Items),
		Version:   o.Version,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	})
	return translate(err)
}

func (r *MongoRepo) SaveOrder(ctx context.Context, o *models.Order) error {
	assignOrderIDs(o)
	res, err := r.col(colOrders).UpdateOne(ctx,
		bson.M{"_id": o.ID, "version": o.Version},
		bson.M{"$set": bson.M{
			"items":      orderItemDocs(o.Items),
			"version":    o.Version + 1,
			"updated_at": now(),
		}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return r.versionMiss(ctx, colOrders, o.ID)
	}
	o.Version++
	return nil
}

func (r *MongoRepo) DeleteOrder(ctx context.Context, id string) error {
	res, err := r.col(colOrders).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
