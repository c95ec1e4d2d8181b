package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bytebazaar/internal/domain"
	"bytebazaar/internal/service"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

type OrderHandler struct {
	Svc   *service.OrderService
	Users domain.UserRepository
	Gates Gates
}

type placeOrderIn struct {
	ProjectID string `json:"projectId" binding:"required,notblank,max=64" msg:"Project ID is required"`
}

type pageQ struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type statusIn struct {
	Status domain.OrderStatus `json:"status" binding:"required,oneof=pending completed cancelled" msg:"Invalid order status"`
}

func (h *OrderHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/orders")
	g.Use(h.Gates.Auth)
	e := ez.New(g)
	admin := []gin.HandlerFunc{h.Gates.Admin}

	ez.RegisterAction(e, ez.Action[placeOrderIn, gin.H]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Fail:   "Error placing order",
		Handler: func(c *gin.Context, in *placeOrderIn) (gin.H, error) {
			o, err := h.Svc.Place(c.Request.Context(), ez.UserID(c), in.ProjectID)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "Order placed successfully", "order": o}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[pageQ, *service.OrderPage]{
		Method: http.MethodGet,
		Path:   "/my-orders",
		Binder: ez.BindQuery,
		Fail:   "Error fetching orders",
		Handler: func(c *gin.Context, in *pageQ) (*service.OrderPage, error) {
			f := domain.OrderFilter{BuyerID: ez.UserID(c)}
			return h.Svc.List(c.Request.Context(), f, service.NewPage(in.Page, in.Limit))
		},
	})

	// 管理员看全部，其余只看自己的
	ez.RegisterAction(e, ez.Action[pageQ, *service.OrderPage]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Fail:   "Error fetching orders",
		Handler: func(c *gin.Context, in *pageQ) (*service.OrderPage, error) {
			uid := ez.UserID(c)
			u, err := h.Users.FindByID(c.Request.Context(), uid)
			if err != nil {
				return nil, err
			}
			f := domain.OrderFilter{BuyerID: uid}
			if u != nil && u.IsAdmin {
				f.BuyerID = ""
			}
			return h.Svc.List(c.Request.Context(), f, service.NewPage(in.Page, in.Limit))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.OrderStats]{
		Method: http.MethodGet,
		Path:   "/stats/overview",
		Binder: ez.BindNone,
		Fail:   "Error fetching order statistics",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.OrderStats, error) {
			return h.Svc.Stats(c.Request.Context())
		},
	}, admin...)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Order]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error fetching order",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Order, error) {
			return h.Svc.Get(c.Request.Context(), c.Param("id"))
		},
	}, admin...)

	ez.RegisterAction(e, ez.Action[statusIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Fail:   "Error updating order",
		Handler: func(c *gin.Context, in *statusIn) (gin.H, error) {
			o, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "Order updated successfully", "order": o}, nil
		},
	}, admin...)

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Fail:   "Error deleting order",
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Order deleted successfully"), nil
		},
	}, admin...)
}

// MountAdmin 管理端只挂统计
func (h *OrderHandler) MountAdmin(admin *gin.RouterGroup) {
	ez.RegisterAction(ez.New(admin), ez.Action[struct{}, *domain.OrderStats]{
		Method: http.MethodGet,
		Path:   "/orders/stats/overview",
		Binder: ez.BindNone,
		Fail:   "Error fetching order statistics",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.OrderStats, error) {
			return h.Svc.Stats(c.Request.Context())
		},
	})
}
