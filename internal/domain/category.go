package domain

import "context"

type Category struct {
	ID          string `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name" bson:"name"`
	Description string `gorm:"size:500" json:"description" bson:"description"`
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) (bool, error)
}
