// Package handler binds HTTP routes to services.
package handler

import "github.com/gin-gonic/gin"

// Gates 路由级鉴权中间件
type Gates struct {
	Auth  gin.HandlerFunc // 需要登录
	Admin gin.HandlerFunc // 需要管理员，须跟在 Auth 之后
}

func (g Gates) authed() []gin.HandlerFunc { return []gin.HandlerFunc{g.Auth} }
func (g Gates) admin() []gin.HandlerFunc  { return []gin.HandlerFunc{g.Auth, g.Admin} }
