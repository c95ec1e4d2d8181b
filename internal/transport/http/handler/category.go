package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bytebazaar/internal/domain"
	"bytebazaar/internal/service"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

type CategoryHandler struct {
	Svc   *service.CategoryService
	Gates Gates
}

// createCategoryIn 创建时 name 必填，更新时可省
type createCategoryIn struct {
	Name        string `json:"name" binding:"required,notblank,max=100" msg:"Category name is required" msg_max:"Category name must be at most 100 characters"`
	Description string `json:"description" binding:"max=500"`
}

func (h *CategoryHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/categories"))

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Fail:   "Error fetching categories",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Category, error) {
			return h.Svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[createCategoryIn, gin.H]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Fail:   "Error creating category",
		Handler: func(c *gin.Context, in *createCategoryIn) (gin.H, error) {
			cat, err := h.Svc.Create(c.Request.Context(), service.CategoryInput{Name: &in.Name, Description: &in.Description})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "Category created successfully", "category": cat}, nil
		},
	}, h.Gates.admin()...)

	ez.RegisterAction(e, ez.Action[service.CategoryInput, gin.H]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Fail:   "Error updating category",
		Handler: func(c *gin.Context, in *service.CategoryInput) (gin.H, error) {
			cat, err := h.Svc.Update(c.Request.Context(), c.Param("id"), *in)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "Category updated", "category": cat}, nil
		},
	}, h.Gates.admin()...)

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error deleting category",
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Category deleted successfully"), nil
		},
	}, h.Gates.admin()...)
}
