package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAPIEngine 用户端：/api 下挂全部业务模块
func NewAPIEngine(d Deps) *gin.Engine {
	r := d.baseEngine()

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	d.modules().MountAPI(r.Group("/api"))
	return r
}
