package domain

import (
	"context"
	"time"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "inProgress"
	ProjectCompleted  ProjectStatus = "completed"
)

type Project struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Title       string        `gorm:"size:200;not null" json:"title" bson:"title"`
	Description string        `gorm:"type:text" json:"description" bson:"description"`
	Category    string        `gorm:"size:100;index" json:"category" bson:"category"`
	Status      ProjectStatus `gorm:"size:16" json:"status,omitempty" bson:"status,omitempty"`
	Price       float64       `gorm:"not null" json:"price" bson:"price"`
	Thumbnail   string        `gorm:"size:512" json:"thumbnail" bson:"thumbnail"`
	Files       []string      `gorm:"serializer:json;type:text" json:"files" bson:"files"`
	CreatedBy   string        `gorm:"size:36;index" json:"createdBy" bson:"created_by"`
	Creator     *User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty" bson:"-"`
	Reviews     []Review      `gorm:"foreignKey:ProjectID" json:"reviews" bson:"reviews"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

// Review 在 SQL 里是子表，在 Mongo 里内嵌于 project 文档
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"id"`
	ProjectID string    `gorm:"size:36;index;not null" json:"-" bson:"-"`
	UserID    string    `gorm:"size:36" json:"userId" bson:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty" bson:"-"`
	Rating    int       `gorm:"not null" json:"rating" bson:"rating"`
	Comment   string    `gorm:"type:text" json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// 允许排序的字段（对外名）
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortPrice     = "price"
	SortTitle     = "title"
)

func ValidSortField(f string) bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortPrice, SortTitle:
		return true
	}
	return false
}

// ProjectQuery 列表筛选；空字段表示不过滤
type ProjectQuery struct {
	Search    string
	Category  string
	CreatedBy string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortDesc  bool
	Offset    int
	Limit     int
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, q ProjectQuery) ([]Project, int64, error)
	Trending(ctx context.Context, limit int) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) (bool, error)
	AddReview(ctx context.Context, projectID string, r *Review) error
}
