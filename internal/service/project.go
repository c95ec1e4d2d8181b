package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"bytebazaar/internal/domain"
	"bytebazaar/pkg/utils"
)

const (
	defaultTrendingLimit = 5
	categoryAll          = "all"
)

type ProjectService struct {
	repo domain.ProjectRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewProjectService(repo domain.ProjectRepository, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{repo: repo, log: log, now: time.Now}
}

// ListParams 对应列表接口的 query
type ListParams struct {
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
	Search    string   `form:"search"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	SortBy    string   `form:"sortBy"`
	SortOrder string   `form:"sortOrder"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type ProjectPage struct {
	Projects   []domain.Project `json:"projects"`
	Pagination Pagination       `json:"pagination"`
}

type CreateProjectInput struct {
	Title       string               `json:"title" binding:"required,notblank,max=200" msg:"Title and price are required" msg_max:"Title must be at most 200 characters"`
	Description string               `json:"description" binding:"max=5000"`
	Category    string               `json:"category" binding:"max=100"`
	Status      domain.ProjectStatus `json:"status" binding:"omitempty,oneof=planning inProgress completed" msg:"Invalid project status"`
	Price       *float64             `json:"price" binding:"required,gte=0" msg:"Title and price are required" msg_gte:"Price must not be negative"`
	Thumbnail   string               `json:"thumbnail" binding:"max=512"`
	Files       []string             `json:"files"`
}

// ProjectPatch nil 字段保持原值；createdBy 不可改。
// JSON 与 multipart 表单共用，AttachFile/DetachFile 由上传流程填写
type ProjectPatch struct {
	Title       *string               `json:"title" form:"title" binding:"omitempty,notblank,max=200" msg:"Title must not be empty" msg_max:"Title must be at most 200 characters"`
	Description *string               `json:"description" form:"description" binding:"omitempty,max=5000"`
	Category    *string               `json:"category" form:"category" binding:"omitempty,max=100"`
	Status      *domain.ProjectStatus `json:"status" form:"status" binding:"omitempty,oneof=planning inProgress completed" msg:"Invalid project status"`
	Price       *float64              `json:"price" form:"price" binding:"omitempty,gte=0" msg:"Price must not be negative"`
	Thumbnail   *string               `json:"thumbnail" form:"thumbnail" binding:"omitempty,max=512"`
	Files       *[]string             `json:"files" form:"files"`

	AttachFile string `json:"-" form:"-"` // 新上传文件的 URL，追加到 files
	DetachFile string `json:"-" form:"-"` // 被替换文件的 id，含该 id 的条目从 files 移除
}

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5" msg:"Rating must be between 1 and 5"`
	Comment string `json:"comment" binding:"max=1000"`
}

func (s *ProjectService) List(ctx context.Context, p ListParams) (*ProjectPage, error) {
	return s.list(ctx, p, "", "")
}

// ByCategory name 为 all 时不过滤
func (s *ProjectService) ByCategory(ctx context.Context, name string, p ListParams) (*ProjectPage, error) {
	if strings.EqualFold(name, categoryAll) {
		name = ""
	}
	return s.list(ctx, p, name, "")
}

// ByUser 固定按创建时间倒序
func (s *ProjectService) ByUser(ctx context.Context, userID string, p ListParams) (*ProjectPage, error) {
	p.Search, p.MinPrice, p.MaxPrice = "", nil, nil
	p.SortBy, p.SortOrder = domain.SortCreatedAt, "desc"
	return s.list(ctx, p, "", userID)
}

func (s *ProjectService) list(ctx context.Context, p ListParams, category, createdBy string) (*ProjectPage, error) {
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return nil, domain.Validation("minPrice must not exceed maxPrice")
	}
	pg := NewPage(p.Page, p.Limit)
	sortBy := p.SortBy
	if !domain.ValidSortField(sortBy) {
		sortBy = domain.SortCreatedAt
	}
	items, total, err := s.repo.List(ctx, domain.ProjectQuery{
		Search:    p.Search,
		Category:  category,
		CreatedBy: createdBy,
		MinPrice:  p.MinPrice,
		MaxPrice:  p.MaxPrice,
		SortBy:    sortBy,
		SortDesc:  !strings.EqualFold(p.SortOrder, "asc"),
		Offset:    pg.Offset(),
		Limit:     pg.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ProjectPage{
		Projects: items,
		Pagination: Pagination{
			Total:      total,
			Page:       pg.Page,
			TotalPages: pg.TotalPages(total),
			HasMore:    int64(pg.Offset()+len(items)) < total,
		},
	}, nil
}

func (s *ProjectService) Trending(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit < 1 {
		limit = defaultTrendingLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.Trending(ctx, limit)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Project not found")
	}
	return p, nil
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in CreateProjectInput) (*domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	price := 0.0
	if in.Price != nil {
		price = *in.Price
	}
	status := in.Status
	if status == "" {
		status = domain.ProjectPlanning
	}
	files := in.Files
	if files == nil {
		files = []string{}
	}
	p := &domain.Project{
		ID:          utils.NewID(),
		Title:       title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Status:      status,
		Price:       price,
		Thumbnail:   in.Thumbnail,
		Files:       files,
		CreatedBy:   ownerID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("project created", zap.String("project_id", p.ID), zap.String("owner", ownerID))
	return s.Get(ctx, p.ID)
}

// owned 不存在 → 404，非创建者 → 403
func (s *ProjectService) owned(ctx context.Context, id, callerID, action string) (*domain.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != callerID {
		return nil, domain.Forbidden("Not authorized to " + action + " this project")
	}
	return p, nil
}

// CanUpdate 在触碰存储之前确认调用者是创建者
func (s *ProjectService) CanUpdate(ctx context.Context, id, callerID string) error {
	_, err := s.owned(ctx, id, callerID, "update")
	return err
}

func (s *ProjectService) Update(ctx context.Context, id, callerID string, in ProjectPatch) (*domain.Project, error) {
	p, err := s.owned(ctx, id, callerID, "update")
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Thumbnail != nil {
		p.Thumbnail = *in.Thumbnail
	}
	if in.Files != nil {
		p.Files = *in.Files
	}
	if in.DetachFile != "" {
		kept := make([]string, 0, len(p.Files))
		for _, f := range p.Files {
			if !strings.Contains(f, in.DetachFile) {
				kept = append(kept, f)
			}
		}
		p.Files = kept
	}
	if in.AttachFile != "" {
		p.Files = append(p.Files, in.AttachFile)
	}
	if p.Files == nil {
		p.Files = []string{}
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ProjectService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.owned(ctx, id, callerID, "delete"); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Project not found")
	}
	s.log.Info("project deleted", zap.String("project_id", id))
	return nil
}

func (s *ProjectService) AddReview(ctx context.Context, projectID, userID string, in ReviewInput) (*domain.Project, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	rv := &domain.Review{
		ID:        utils.NewID(),
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now(),
	}
	if err := s.repo.AddReview(ctx, projectID, rv); err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID)
}
