package repo

import (
	"gorm.io/gorm"

	"bytebazaar/internal/domain"
)

// Models 需要建表的全部模型
func Models() []any {
	return []any{&domain.User{}, &domain.Category{}, &domain.Project{}, &domain.Review{}, &domain.Order{}}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
