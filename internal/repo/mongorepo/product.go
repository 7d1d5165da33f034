package mongorepo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *MongoRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = models.NewID()
	}
	p.CreatedAt, p.UpdatedAt = now(), now()
	_, err := r.col(colProducts).InsertOne(ctx, newProductDoc(p))
	return translate(err)
}

func (r *MongoRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var d productDoc
	if err := r.col(colProducts).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	p := d.model()
	return &p, nil
}

func (r *MongoRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	_, products, err := r.findProducts(ctx, bson.M{"_id": bson.M{"$in": ids}}, 0, len(ids))
	return products, err
}

func (r *MongoRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return r.findProducts(ctx, bson.M{}, offset, limit)
}

func (r *MongoRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.findProducts(ctx, bson.M{"$or": bson.A{
		bson.M{"name": rx},
		bson.M{"description": rx},
	}}, offset, limit)
}

func (r *MongoRepo) findProducts(ctx context.Context, filter bson.M, offset, limit int) (int64, []models.Product, error) {
	total, err := r.col(colProducts).CountDocuments(ctx, filter)
	if err != nil {
		return 0, nil, err
	}
	cur, err := r.col(colProducts).Find(ctx, filter, pageOptions(offset, limit))
	if err != nil {
		return 0, nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return 0, nil, err
	}
	products := make([]models.Product, len(docs))
	for i, d := range docs {
		products[i] = d.model()
	}
	return total, products, nil
}

func (r *MongoRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = now()
	d := newProductDoc(p)
	res, err := r.col(colProducts).UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":        d.Name,
		"description": d.Description,
		"price":       d.Price,
		"category":    d.Category,
		"colours":     d.Colours,
		"sizes":       d.Sizes,
		"images":      d.Images,
		"updated_at":  d.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) SetAvailability(ctx context.Context, id string, availability int) error {
	res, err := r.col(colProducts).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"availability": availability,
		"updated_at":   now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.col(colProducts).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) AdjustAvailability(ctx context.Context, id string, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["availability"] = bson.M{"$gte": -delta}
	}
	res, err := r.col(colProducts).UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"availability": delta},
		"$set": bson.M{"updated_at": now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col(colProducts).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrInsufficientStock
}
