package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *MongoRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = models.NewID()
	}
	u.CreatedAt, u.UpdatedAt = now(), now()
	_, err := r.col(colUsers).InsertOne(ctx, newUserDoc(u))
	return translate(err)
}

func (r *MongoRepo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var d userDoc
	if err := r.col(colUsers).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	u := d.model()
	return &u, nil
}

func (r *MongoRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, bson.M{"_id": id})
}

func (r *MongoRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *MongoRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	total, err := r.col(colUsers).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, nil, err
	}
	cur, err := r.col(colUsers).Find(ctx, bson.M{}, pageOptions(offset, limit))
	if err != nil {
		return 0, nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return 0, nil, err
	}
	users := make([]models.User, len(docs))
	for i, d := range docs {
		users[i] = d.model()
	}
	return total, users, nil
}

func (r *MongoRepo) UpdateUser(ctx context.Context, u *models.User) error {
	d := newUserDoc(u)
	u.UpdatedAt = now()
	res, err := r.col(colUsers).UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"full_name":     d.FullName,
		"password_hash": d.PasswordHash,
		"gender":        d.Gender,
		"addresses":     d.Addresses,
		"updated_at":    u.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.col(colUsers).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) updateUserSet(ctx context.Context, userID string, update bson.M) (*models.User, error) {
	update["$set"] = bson.M{"updated_at": now()}
	var d userDoc
	err := r.col(colUsers).FindOneAndUpdate(ctx, bson.M{"_id": userID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return nil, translate(err)
	}
	u := d.model()
	return &u, nil
}

func (r *MongoRepo) AddFavourite(ctx context.Context, userID, productID string) (*models.User, error) {
	return r.updateUserSet(ctx, userID, bson.M{"$addToSet": bson.M{"favourites": productID}})
}

func (r *MongoRepo) RemoveFavourite(ctx context.Context, userID, productID string) (*models.User, error) {
	return r.updateUserSet(ctx, userID, bson.M{"$pull": bson.M{"favourites": productID}})
}

func (r *MongoRepo) AddUserOrder(ctx context.Context, userID, orderID string) error {
	_, err := r.updateUserSet(ctx, userID, bson.M{"$addToSet": bson.M{"orders": orderID}})
	return err
}
