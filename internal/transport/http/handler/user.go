package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bytebazaar/internal/domain"
	"bytebazaar/internal/service"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

// UserHandler 公开查询挂在 /api，管理接口挂在 /admin/v1
type UserHandler struct {
	Svc *service.UserService
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	ez.RegisterAction(ez.New(api), ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Fail:   "Error fetching user",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.Svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
}

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin.Group("/users"))

	ez.RegisterAction(e, ez.Action[pageQ, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Fail:   "Error fetching users",
		Handler: func(c *gin.Context, in *pageQ) (*service.UserPage, error) {
			return h.Svc.List(c.Request.Context(), service.NewPage(in.Page, in.Limit))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.UserStats]{
		Method: http.MethodGet,
		Path:   "/stats/overview",
		Binder: ez.BindNone,
		Fail:   "Error fetching user statistics",
		Handler: func(c *gin.Context, _ *struct{}) (*service.UserStats, error) {
			return h.Svc.Stats(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error fetching user",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.Svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[service.CreateUserInput, gin.H]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Fail:   "Error creating user",
		Handler: func(c *gin.Context, in *service.CreateUserInput) (gin.H, error) {
			u, err := h.Svc.Create(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "User created successfully", "user": u}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[service.UpdateUserInput, gin.H]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Fail:   "Error updating user",
		Handler: func(c *gin.Context, in *service.UpdateUserInput) (gin.H, error) {
			u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), *in)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "User updated successfully", "user": u}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error deleting user",
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("User deleted successfully"), nil
		},
	})
}
