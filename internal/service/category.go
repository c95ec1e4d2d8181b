package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"bytebazaar/internal/core/cache"
	"bytebazaar/internal/domain"
	"bytebazaar/pkg/utils"
)

const (
	categoriesKey = "bytebazaar:categories"
	categoriesTTL = 10 * time.Minute
)

type CategoryService struct {
	repo  domain.CategoryRepository
	cache *cache.Cache
	log   *zap.Logger
}

// NewCategoryService c 可为 nil（不缓存）
func NewCategoryService(repo domain.CategoryRepository, c *cache.Cache, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{repo: repo, cache: c, log: log}
}

// CategoryInput 创建时 handler 另行要求 name 必填
type CategoryInput struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=100" msg:"Category name is required"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	out, err := cache.GetOrLoadJSON(ctx, s.cache, categoriesKey, categoriesTTL, s.repo.List)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Category{}, nil
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	var name, desc string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		desc = *in.Description
	}
	if name == "" {
		return nil, domain.Validation("Category name is required")
	}
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("Category already exists")
	}
	c := &domain.Category{ID: utils.NewID(), Name: name, Description: desc}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Category not found")
	}
	if in.Name != nil {
		if n := strings.TrimSpace(*in.Name); n != "" {
			c.Name = n
		}
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("Category already exists")
		}
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Category not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, categoriesKey); err != nil {
		s.log.Warn("category cache invalidate failed", zap.Error(err))
	}
}
