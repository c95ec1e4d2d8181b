package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bytebazaar/internal/domain"
)

type MongoOrderRepo struct {
	db *mongo.Database
	c  *mongo.Collection
}

func NewMongoOrderRepo(db *mongo.Database) *MongoOrderRepo {
	return &MongoOrderRepo{db: db, c: db.Collection(collOrders)}
}

func (r *MongoOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.c.InsertOne(ctx, o)
	if isDupKey(err) {
		return domain.Conflict("You already ordered this project")
	}
	return err
}

func (r *MongoOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := findOne[domain.Order](ctx, r.c, bson.M{"_id": id})
	if err != nil || o == nil {
		return o, err
	}
	list := []domain.Order{*o}
	if err := r.populate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *MongoOrderRepo) FindByBuyerAndProject(ctx context.Context, buyerID, projectID string) (*domain.Order, error) {
	return findOne[domain.Order](ctx, r.c, bson.M{"buyer_id": buyerID, "project_id": projectID})
}

func (r *MongoOrderRepo) List(ctx context.Context, f domain.OrderFilter, offset, limit int) ([]domain.Order, int64, error) {
	filter := bson.M{}
	if f.BuyerID != "" {
		filter["buyer_id"] = f.BuyerID
	}
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "purchased_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).SetLimit(int64(limit))
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, r.populate(ctx, out)
}

func (r *MongoOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	_, err := r.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	return err
}

func (r *MongoOrderRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoOrderRepo) Stats(ctx context.Context, since time.Time) (domain.OrderStats, error) {
	st := domain.OrderStats{DailyRevenue: []domain.DailyRevenue{}}
	var err error
	if st.TotalOrders, err = r.c.CountDocuments(ctx, bson.M{}); err != nil {
		return st, err
	}
	if st.LastWeekOrders, err = r.c.CountDocuments(ctx, bson.M{"purchased_at": bson.M{"$gte": since}}); err != nil {
		return st, err
	}

	cur, err := r.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$amount"}}}},
	})
	if err != nil {
		return st, err
	}
	var sum []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &sum); err != nil {
		return st, err
	}
	if len(sum) > 0 {
		st.TotalRevenue = sum[0].Revenue
	}

	cur, err = r.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"purchased_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$purchased_at"}},
			"revenue": bson.M{"$sum": "$amount"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return st, err
	}
	if err := cur.All(ctx, &st.DailyRevenue); err != nil {
		return st, err
	}

	if st.TotalOrders > 0 {
		st.AverageOrderValue = st.TotalRevenue / float64(st.TotalOrders)
	}
	return st, nil
}

func (r *MongoOrderRepo) populate(ctx context.Context, orders []domain.Order) error {
	var userIDs, projectIDs []string
	for _, o := range orders {
		userIDs = append(userIDs, o.BuyerID)
		projectIDs = append(projectIDs, o.ProjectID)
	}
	users, err := usersByID(ctx, r.db, userIDs)
	if err != nil {
		return err
	}
	projects := map[string]*domain.Project{}
	if ids := uniq(projectIDs); len(ids) > 0 {
		cur, err := r.db.Collection(collProjects).Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(bson.M{"reviews": 0}))
		if err != nil {
			return err
		}
		var ps []domain.Project
		if err := cur.All(ctx, &ps); err != nil {
			return err
		}
		for i := range ps {
			projects[ps[i].ID] = &ps[i]
		}
	}
	for i := range orders {
		orders[i].Buyer = users[orders[i].BuyerID]
		orders[i].Project = projects[orders[i].ProjectID]
	}
	return nil
}
