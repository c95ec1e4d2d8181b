package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name         string    `gorm:"size:64;not null" json:"name" bson:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email" bson:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-" bson:"password_hash"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"isAdmin" bson:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// UserCounts 用户统计原始计数（百分比由 service 计算）
type UserCounts struct {
	Total    int64
	Admins   int64
	LastWeek int64
}

// UserRepository 查不到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) (bool, error)
	Counts(ctx context.Context, since time.Time) (UserCounts, error)
}
