package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/domain"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

// Authenticate 校验 Bearer access token；通过后写入 userId / name / claims
func Authenticate(tokens *auth.TokenService, deny auth.Denylist, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")) == "" {
			resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := tokens.VerifyAccess(strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			resp.Abort(c, http.StatusUnauthorized, "Token expired")
			return
		case err != nil:
			resp.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		if deny != nil {
			revoked, err := deny.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				l.Error("denylist lookup failed", zap.Error(err))
				resp.Abort(c, http.StatusInternalServerError, "")
				return
			}
			if revoked {
				resp.Abort(c, http.StatusUnauthorized, "Token revoked")
				return
			}
		}
		c.Set(ez.KeyUserID, claims.UserID)
		c.Set(ez.KeyName, claims.Name)
		c.Set(ez.KeyClaims, claims)
		c.Next()
	}
}

// RequireAdmin 每次请求查一次库，不缓存
func RequireAdmin(users domain.UserRepository, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ez.UserID(c)
		if uid == "" {
			resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		u, err := users.FindByID(c.Request.Context(), uid)
		if err != nil {
			l.Error("admin gate lookup failed", zap.String("user_id", uid), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.WithCause(http.StatusInternalServerError, "", err))
			return
		}
		if u == nil || !u.IsAdmin {
			resp.Abort(c, http.StatusForbidden, "Access denied. Admins only.")
			return
		}
		c.Next()
	}
}
