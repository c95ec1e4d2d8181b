package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bytebazaar/internal/domain"
)

type MongoCategoryRepo struct{ c *mongo.Collection }

func NewMongoCategoryRepo(db *mongo.Database) *MongoCategoryRepo {
	return &MongoCategoryRepo{c: db.Collection(collCategories)}
}

func (r *MongoCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []domain.Category{}
	return out, cur.All(ctx, &out)
}

func (r *MongoCategoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return findOne[domain.Category](ctx, r.c, bson.M{"_id": id})
}

func (r *MongoCategoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return findOne[domain.Category](ctx, r.c, bson.M{"name": name})
}

func (r *MongoCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.c.InsertOne(ctx, c)
	if isDupKey(err) {
		return domain.Conflict("Category already exists")
	}
	return err
}

func (r *MongoCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	_, err := r.c.UpdateByID(ctx, c.ID, bson.M{"$set": bson.M{"name": c.Name, "description": c.Description}})
	if isDupKey(err) {
		return domain.Conflict("Category already exists")
	}
	return err
}

func (r *MongoCategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
