package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"bytebazaar/internal/domain"
	"bytebazaar/pkg/utils"
)

type UserService struct {
	users domain.UserRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewUserService(users domain.UserRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, log: log, now: time.Now}
}

type UserPage struct {
	Users       []domain.User `json:"users"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalUsers  int64         `json:"totalUsers"`
}

type CreateUserInput struct {
	Name     string `json:"name" binding:"required,notblank,max=64" msg:"All fields are required" msg_max:"Name must be at most 64 characters"`
	Email    string `json:"email" binding:"required,email,max=191" msg:"All fields are required" msg_email:"Invalid email address" msg_max:"Email is too long"`
	Password string `json:"password" binding:"required,max=72" msg:"All fields are required" msg_max:"Password must be at most 72 characters"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UpdateUserInput 只改传入的字段
type UpdateUserInput struct {
	Name    *string `json:"name" binding:"omitempty,notblank,max=64" msg:"Name must not be empty"`
	Email   *string `json:"email" binding:"omitempty,email,max=191" msg:"Invalid email address"`
	IsAdmin *bool   `json:"isAdmin"`
}

type UserStats struct {
	TotalUsers        int64   `json:"totalUsers"`
	AdminUsers        int64   `json:"adminUsers"`
	RegularUsers      int64   `json:"regularUsers"`
	LastWeekUsers     int64   `json:"lastWeekUsers"`
	AdminPercentage   float64 `json:"adminPercentage"`
	RegularPercentage float64 `json:"regularPercentage"`
}

func (s *UserService) List(ctx context.Context, p Page) (*UserPage, error) {
	users, total, err := s.users.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, CurrentPage: p.Page, TotalPages: p.TotalPages(total), TotalUsers: total}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Name, in.Email = strings.TrimSpace(in.Name), strings.TrimSpace(in.Email)
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: utils.NewID(), Name: in.Name, Email: in.Email, PasswordHash: hash, IsAdmin: in.IsAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("Email already exists")
		}
		return nil, err
	}
	s.log.Info("user created by admin", zap.String("user_id", u.ID), zap.Bool("is_admin", u.IsAdmin))
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if n := strings.TrimSpace(*in.Name); n != "" {
			u.Name = n
		}
	}
	if in.Email != nil {
		if e := strings.TrimSpace(*in.Email); e != "" {
			u.Email = e
		}
	}
	if in.IsAdmin != nil {
		u.IsAdmin = *in.IsAdmin
	}
	u.UpdatedAt = s.now()
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("Email already exists")
		}
		return nil, err
	}
	return u, nil
}

// Delete 物理删除；名下项目和订单保留
func (s *UserService) Delete(ctx context.Context, id string) error {
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("User not found")
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) Stats(ctx context.Context) (*UserStats, error) {
	c, err := s.users.Counts(ctx, s.now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	st := &UserStats{
		TotalUsers:    c.Total,
		AdminUsers:    c.Admins,
		RegularUsers:  c.Total - c.Admins,
		LastWeekUsers: c.LastWeek,
	}
	if c.Total > 0 {
		st.AdminPercentage = float64(c.Admins) / float64(c.Total) * 100
		st.RegularPercentage = float64(st.RegularUsers) / float64(c.Total) * 100
	}
	return st, nil
}
