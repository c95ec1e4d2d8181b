package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/domain"
)

type fakeUsers struct {
	domain.UserRepository
	byID map[string]*domain.User
}

func (f fakeUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	return f.byID[id], nil
}

func serve(r *gin.Engine, token string) (int, string) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body.Message
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenService("a-secret", "r-secret", "bb", 0, 0)
	deny := auth.NewMemoryDenylist()

	r := gin.New()
	r.GET("/x", Authenticate(tokens, deny, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": c.GetString("userId")})
	})

	code, msg := serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", msg)

	code, msg = serve(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", msg)

	expired := &auth.JWTer{Secret: []byte("a-secret"), Issuer: "bb", TTL: time.Minute,
		Now: func() time.Time { return time.Now().Add(-time.Hour) }}
	old, _, err := expired.Issue("u1", "A")
	require.NoError(t, err)
	code, msg = serve(r, old)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token expired", msg)

	refresh, err := tokens.IssueRefreshToken("u1", "A")
	require.NoError(t, err)
	code, _ = serve(r, refresh)
	assert.Equal(t, http.StatusUnauthorized, code)

	tok, claims, err := tokens.Access.Issue("u1", "A")
	require.NoError(t, err)
	code, msg = serve(r, tok)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u1", msg)

	require.NoError(t, deny.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	code, msg = serve(r, tok)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token revoked", msg)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := fakeUsers{byID: map[string]*domain.User{
		"admin": {ID: "admin", IsAdmin: true},
		"user":  {ID: "user"},
	}}
	build := func(uid string) *gin.Engine {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) {
			if uid != "" {
				c.Set("userId", uid)
			}
		}, RequireAdmin(users, zap.NewNop()), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		})
		return r
	}

	code, _ := serve(build(""), "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, msg := serve(build("user"), "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied. Admins only.", msg)

	code, _ = serve(build("ghost"), "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = serve(build("admin"), "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimitPerIP(0.0001, 1), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	code, _ := serve(r, "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequestID(), Recovery(zap.NewNop()), func(*gin.Context) { panic("boom") })
	code, msg := serve(r, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Something went wrong", msg)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(KeyRequestID, strings.Repeat("x", 100))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	code, _ := serve(r, "")
	assert.Equal(t, http.StatusGatewayTimeout, code)
}

func TestMaxBodyBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", MaxBodyBytes(8), func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"k":"a long value"}`))
	req.ContentLength = 20
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
