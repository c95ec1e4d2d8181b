package repo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bytebazaar/internal/domain"
)

var projectSortFields = map[string]string{
	domain.SortCreatedAt: "created_at",
	domain.SortUpdatedAt: "updated_at",
	domain.SortPrice:     "price",
	domain.SortTitle:     "title",
}

// MongoProjectRepo 评价内嵌在 project 文档里
type MongoProjectRepo struct {
	db *mongo.Database
	c  *mongo.Collection
}

func NewMongoProjectRepo(db *mongo.Database) *MongoProjectRepo {
	return &MongoProjectRepo{db: db, c: db.Collection(collProjects)}
}

func (r *MongoProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	// $push 不能作用于 null
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	if p.Files == nil {
		p.Files = []string{}
	}
	_, err := r.c.InsertOne(ctx, p)
	return err
}

func (r *MongoProjectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := findOne[domain.Project](ctx, r.c, bson.M{"_id": id})
	if err != nil || p == nil {
		return p, err
	}
	list := []domain.Project{*p}
	if err := r.populate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *MongoProjectRepo) List(ctx context.Context, q domain.ProjectQuery) ([]domain.Project, int64, error) {
	filter := projectFilter(q)
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	field, ok := projectSortFields[q.SortBy]
	if !ok {
		field = "created_at"
	}
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Offset)).SetLimit(int64(q.Limit))
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Project{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, r.populate(ctx, out)
}

func (r *MongoProjectRepo) Trending(ctx context.Context, limit int) ([]domain.Project, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{"max_rating": bson.M{"$ifNull": bson.A{bson.M{"$max": "$reviews.rating"}, 0}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "max_rating", Value: -1}, {Key: "created_at", Value: -1}}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.M{"max_rating": 0}}},
	}
	cur, err := r.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []domain.Project{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, r.populate(ctx, out)
}

func (r *MongoProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()
	files := p.Files
	if files == nil {
		files = []string{}
	}
	_, err := r.c.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"title":       p.Title,
		"description": p.Description,
		"category":    p.Category,
		"status":      p.Status,
		"price":       p.Price,
		"thumbnail":   p.Thumbnail,
		"files":       files,
		"updated_at":  p.UpdatedAt,
	}})
	return err
}

func (r *MongoProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoProjectRepo) AddReview(ctx context.Context, projectID string, rv *domain.Review) error {
	rv.ProjectID = projectID
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	_, err := r.c.UpdateByID(ctx, projectID, bson.M{"$push": bson.M{"reviews": rv}})
	return err
}

func projectFilter(q domain.ProjectQuery) bson.M {
	f := bson.M{}
	if s := strings.TrimSpace(q.Search); s != "" {
		re := ciRegex(s)
		f["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}
	if q.Category != "" {
		f["category"] = q.Category
	}
	if q.CreatedBy != "" {
		f["created_by"] = q.CreatedBy
	}
	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		f["price"] = price
	}
	return f
}

func ciRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// populate 回填 creator 和评价人
func (r *MongoProjectRepo) populate(ctx context.Context, ps []domain.Project) error {
	var ids []string
	for _, p := range ps {
		ids = append(ids, p.CreatedBy)
		for _, rv := range p.Reviews {
			ids = append(ids, rv.UserID)
		}
	}
	users, err := usersByID(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for i := range ps {
		ps[i].Creator = users[ps[i].CreatedBy]
		if ps[i].Reviews == nil {
			ps[i].Reviews = []domain.Review{}
		}
		for j := range ps[i].Reviews {
			ps[i].Reviews[j].ProjectID = ps[i].ID
			ps[i].Reviews[j].User = users[ps[i].Reviews[j].UserID]
		}
	}
	return nil
}
