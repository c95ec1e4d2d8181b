package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bytebazaar/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("User already exists")
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Model(u).Select("name", "email", "is_admin", "password_hash", "updated_at").Updates(u).Error
	if isDupKey(err) {
		return domain.Conflict("Email already in use")
	}
	return err
}

// Delete 物理删除，不级联
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepo) Counts(ctx context.Context, since time.Time) (domain.UserCounts, error) {
	var c domain.UserCounts
	db := r.db.WithContext(ctx).Model(&domain.User{})
	if err := db.Count(&c.Total).Error; err != nil {
		return c, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("is_admin = ?", true).Count(&c.Admins).Error; err != nil {
		return c, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("created_at >= ?", since).Count(&c.LastWeek).Error; err != nil {
		return c, err
	}
	return c, nil
}
