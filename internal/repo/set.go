package repo

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"bytebazaar/internal/domain"
)

// Set 一组同一存储后端的仓储
type Set struct {
	Users      domain.UserRepository
	Categories domain.CategoryRepository
	Projects   domain.ProjectRepository
	Orders     domain.OrderRepository
}

func NewGormSet(db *gorm.DB) Set {
	return Set{
		Users:      NewUserRepo(db),
		Categories: NewCategoryRepo(db),
		Projects:   NewProjectRepo(db),
		Orders:     NewOrderRepo(db),
	}
}

func NewMongoSet(db *mongo.Database) Set {
	return Set{
		Users:      NewMongoUserRepo(db),
		Categories: NewMongoCategoryRepo(db),
		Projects:   NewMongoProjectRepo(db),
		Orders:     NewMongoOrderRepo(db),
	}
}
