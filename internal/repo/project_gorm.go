package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bytebazaar/internal/domain"
)

// 对外排序名 → 列名
var projectSortColumns = map[string]string{
	domain.SortCreatedAt: "created_at",
	domain.SortUpdatedAt: "updated_at",
	domain.SortPrice:     "price",
	domain.SortTitle:     "title",
}

const trendingScore = "(SELECT COALESCE(MAX(rating), 0) FROM reviews WHERE reviews.project_id = projects.id)"

type ProjectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.withRelations(r.db.WithContext(ctx)).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context, q domain.ProjectQuery) ([]domain.Project, int64, error) {
	base := r.filter(r.db.WithContext(ctx).Model(&domain.Project{}), q)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := projectSortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	out := []domain.Project{}
	err := r.withRelations(r.filter(r.db.WithContext(ctx), q)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.SortDesc}).
		Order("id").
		Offset(q.Offset).Limit(q.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Trending 按最高评分降序，其次最新
func (r *ProjectRepo) Trending(ctx context.Context, limit int) ([]domain.Project, error) {
	out := []domain.Project{}
	err := r.withRelations(r.db.WithContext(ctx)).
		Order(trendingScore + " DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Model(p).Omit(clause.Associations).
		Select("title", "description", "category", "status", "price", "thumbnail", "files", "updated_at").
		Updates(p).Error
}

// Delete 连同评价一起删除
func (r *ProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Project{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *ProjectRepo) AddReview(ctx context.Context, projectID string, rv *domain.Review) error {
	rv.ProjectID = projectID
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
}

func (r *ProjectRepo) filter(db *gorm.DB, q domain.ProjectQuery) *gorm.DB {
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.CreatedBy != "" {
		db = db.Where("created_by = ?", q.CreatedBy)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	return db
}

func (r *ProjectRepo) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Creator").
		Preload("Reviews", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		Preload("Reviews.User")
}
