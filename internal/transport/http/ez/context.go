package ez

import "github.com/gin-gonic/gin"

// 鉴权中间件写入的 key
const (
	KeyUserID = "userId"
	KeyName   = "name"
	KeyClaims = "claims"
)

func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }
