package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mdw "bytebazaar/internal/transport/http/middleware"
)

// NewAdminEngine 后台端：/admin/v1 统一要求登录 + 管理员
func NewAdminEngine(d Deps) *gin.Engine {
	r := d.baseEngine()

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(
		mdw.Authenticate(d.Tokens, d.Deny, d.Log),
		mdw.RequireAdmin(d.Repos.Users, d.Log),
	)
	d.modules().MountAdmin(admin)
	return r
}
