package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/service"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

const refreshCookie = "refreshToken"

type AuthHandler struct {
	Svc          *service.AuthService
	Gates        Gates
	SecureCookie bool
	Log          *zap.Logger
}

type loginIn struct {
	Email    string `json:"email" binding:"required" msg:"Email and password are required"`
	Password string `json:"password" binding:"required" msg:"Email and password are required"`
}

type loginOut struct {
	AccessToken string `json:"accessToken"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"isAdmin"`
}

type profileOut struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/auth"))

	ez.RegisterAction(e, ez.Action[service.RegisterInput, resp.Resp]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Fail:   "Something went wrong",
		Handler: func(c *gin.Context, in *service.RegisterInput) (resp.Resp, error) {
			if _, err := h.Svc.Register(c.Request.Context(), *in); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("User registered successfully"), nil
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Fail:   "Something went wrong",
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			res, err := h.Svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			h.setRefreshCookie(c, res.RefreshToken, int(auth.RefreshTokenTTL.Seconds()))
			return loginOut{
				AccessToken: res.AccessToken,
				Name:        res.User.Name,
				Email:       res.User.Email,
				IsAdmin:     res.User.IsAdmin,
			}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/refresh-token",
		Binder: ez.BindNone,
		Fail:   "Something went wrong",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			tok, _ := c.Cookie(refreshCookie)
			access, err := h.Svc.Refresh(c.Request.Context(), tok)
			if err != nil {
				return nil, err
			}
			return gin.H{"accessToken": access}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			tok, _ := c.Cookie(refreshCookie)
			access := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
			if err := h.Svc.Logout(c.Request.Context(), tok, access); err != nil {
				// 吊销失败不影响登出
				h.Log.Warn("token revoke failed", zap.Error(err))
			}
			h.setRefreshCookie(c, "", -1)
			return resp.Msg("Logged out successfully"), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, profileOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Fail:   "Something went wrong",
		Handler: func(c *gin.Context, _ *struct{}) (profileOut, error) {
			u, err := h.Svc.Me(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return profileOut{}, err
			}
			return profileOut{Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}, nil
		},
	}, h.Gates.authed()...)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.SecureCookie, true)
}
