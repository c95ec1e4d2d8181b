package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bytebazaar/internal/domain"
)

type MongoUserRepo struct{ c *mongo.Collection }

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{c: db.Collection(collUsers)}
}

func (r *MongoUserRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := r.c.InsertOne(ctx, u); err != nil {
		if isDupKey(err) {
			return domain.Conflict("User already exists")
		}
		return err
	}
	return nil
}

func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.c, bson.M{"_id": id})
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.c, bson.M{"email": email})
}

func (r *MongoUserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	total, err := r.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).SetLimit(int64(limit))
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *MongoUserRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := r.c.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"name":          u.Name,
		"email":         u.Email,
		"is_admin":      u.IsAdmin,
		"password_hash": u.PasswordHash,
		"updated_at":    u.UpdatedAt,
	}})
	if isDupKey(err) {
		return domain.Conflict("Email already in use")
	}
	return err
}

func (r *MongoUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoUserRepo) Counts(ctx context.Context, since time.Time) (domain.UserCounts, error) {
	var c domain.UserCounts
	var err error
	if c.Total, err = r.c.CountDocuments(ctx, bson.M{}); err != nil {
		return c, err
	}
	if c.Admins, err = r.c.CountDocuments(ctx, bson.M{"is_admin": true}); err != nil {
		return c, err
	}
	if c.LastWeek, err = r.c.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}}); err != nil {
		return c, err
	}
	return c, nil
}
