package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bytebazaar/internal/core/storage"
	"bytebazaar/internal/domain"
	"bytebazaar/internal/service"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

// ProjectHandler Store 只在 multipart 更新换文件时用到
type ProjectHandler struct {
	Svc    *service.ProjectService
	Store  storage.Provider
	TmpDir string
	Gates  Gates
	Log    *zap.Logger
}

type trendingQ struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// updateIn JSON 或 multipart；multipart 可带 file 替换 oldFileId
type updateIn struct {
	service.ProjectPatch
	OldFileID string `json:"oldFileId" form:"oldFileId" binding:"max=128"`
}

func (h *ProjectHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/projects"))

	ez.RegisterAction(e, ez.Action[service.ListParams, *service.ProjectPage]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Fail:   "Error fetching projects",
		Handler: func(c *gin.Context, in *service.ListParams) (*service.ProjectPage, error) {
			return h.Svc.List(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[service.ListParams, *service.ProjectPage]{
		Method: http.MethodGet,
		Path:   "/category/:categoryName",
		Binder: ez.BindQuery,
		Fail:   "Error fetching projects by category",
		Handler: func(c *gin.Context, in *service.ListParams) (*service.ProjectPage, error) {
			return h.Svc.ByCategory(c.Request.Context(), c.Param("categoryName"), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[trendingQ, []domain.Project]{
		Method: http.MethodGet,
		Path:   "/trending",
		Binder: ez.BindQuery,
		Fail:   "Error fetching trending projects",
		Handler: func(c *gin.Context, in *trendingQ) ([]domain.Project, error) {
			return h.Svc.Trending(c.Request.Context(), in.Limit)
		},
	})

	ez.RegisterAction(e, ez.Action[service.ListParams, *service.ProjectPage]{
		Method: http.MethodGet,
		Path:   "/user/:userId",
		Binder: ez.BindQuery,
		Fail:   "Error fetching user projects",
		Handler: func(c *gin.Context, in *service.ListParams) (*service.ProjectPage, error) {
			return h.Svc.ByUser(c.Request.Context(), c.Param("userId"), *in)
		},
	}, h.Gates.authed()...)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Project]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error fetching project",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Project, error) {
			return h.Svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[service.CreateProjectInput, *domain.Project]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Fail:   "Error creating project",
		Handler: func(c *gin.Context, in *service.CreateProjectInput) (*domain.Project, error) {
			return h.Svc.Create(c.Request.Context(), ez.UserID(c), *in)
		},
	}, h.Gates.authed()...)

	ez.RegisterAction(e, ez.Action[updateIn, *domain.Project]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindAuto,
		Fail:    "Error updating project",
		Handler: h.update,
	}, h.Gates.authed()...)

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error deleting project",
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), ez.UserID(c)); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Project deleted successfully"), nil
		},
	}, h.Gates.authed()...)

	ez.RegisterAction(e, ez.Action[service.ReviewInput, *domain.Project]{
		Method: http.MethodPost,
		Path:   "/:id/reviews",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Fail:   "Error adding review",
		Handler: func(c *gin.Context, in *service.ReviewInput) (*domain.Project, error) {
			return h.Svc.AddReview(c.Request.Context(), c.Param("id"), ez.UserID(c), *in)
		},
	}, h.Gates.authed()...)
}

func (h *ProjectHandler) update(c *gin.Context, in *updateIn) (*domain.Project, error) {
	ctx := c.Request.Context()
	id, uid := c.Param("id"), ez.UserID(c)
	fh, err := c.FormFile("file")
	if err != nil {
		return h.Svc.Update(ctx, id, uid, in.ProjectPatch)
	}

	if err := h.Svc.CanUpdate(ctx, id, uid); err != nil {
		return nil, err
	}
	if in.OldFileID != "" {
		if err := h.Store.Delete(ctx, in.OldFileID); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ez.Internal("Error updating file", err)
		}
	}
	obj, err := storage.UploadMultipart(ctx, h.Store, h.TmpDir, fh)
	if err != nil {
		return nil, ez.Internal("Error updating file", err)
	}
	patch := in.ProjectPatch
	patch.AttachFile, patch.DetachFile = obj.URL, in.OldFileID
	p, err := h.Svc.Update(ctx, id, uid, patch)
	if err != nil {
		// 更新失败不留孤儿文件
		if derr := h.Store.Delete(ctx, obj.FileID); derr != nil {
			h.Log.Warn("orphan upload", zap.String("file_id", obj.FileID), zap.Error(derr))
		}
		return nil, err
	}
	h.Log.Info("project file replaced", zap.String("project_id", id), zap.String("file_id", obj.FileID), zap.String("old_file_id", in.OldFileID))
	return p, nil
}
