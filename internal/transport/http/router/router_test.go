package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/core/database/dbtest"
	"bytebazaar/internal/core/events"
	"bytebazaar/internal/core/storage"
	"bytebazaar/internal/domain"
	"bytebazaar/internal/repo"
	"bytebazaar/pkg/utils"
)

const (
	accessSecret  = "access-secret-for-tests"
	refreshSecret = "refresh-secret-for-tests"
)

type httpSuite struct {
	suite.Suite
	deps   Deps
	api    *gin.Engine
	admin  *gin.Engine
	events *events.Recorder
}

func TestHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(httpSuite))
}

func (s *httpSuite) SetupTest() {
	t := s.T()
	db := dbtest.Open(t, repo.Models()...)
	store, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	s.events = &events.Recorder{}
	s.deps = Deps{
		Log:    zap.NewNop(),
		Repos:  repo.NewGormSet(db),
		Tokens: auth.NewTokenService(accessSecret, refreshSecret, "test", 0, 0),
		Deny:   auth.NewMemoryDenylist(),
		Store:  store,
		Events: s.events,
		TmpDir: t.TempDir(),
		Mode:   gin.TestMode,
		Limits: Limits{RPS: 1e6, Burst: 1e6, PerIPRPS: 1e6, PerIPBurst: 1e6},
	}
	s.api = NewAPIEngine(s.deps)
	s.admin = NewAdminEngine(s.deps)
}

type reply struct {
	Code    int
	Body    map[string]any
	Raw     []byte
	Header  http.Header
	Cookies []*http.Cookie
}

func (r reply) msg() string {
	m, _ := r.Body["message"].(string)
	return m
}

func (s *httpSuite) do(h http.Handler, method, path, token string, body any, cookies ...*http.Cookie) reply {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return s.serve(h, req)
}

func (s *httpSuite) serve(h http.Handler, req *http.Request) reply {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	out := reply{Code: w.Code, Raw: w.Body.Bytes(), Header: w.Header(), Cookies: w.Result().Cookies()}
	_ = json.Unmarshal(out.Raw, &out.Body)
	return out
}

// signup + login，返回 access token 和 refresh cookie
func (s *httpSuite) login(name, email string) (string, *http.Cookie) {
	r := s.do(s.api, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret123", "confirmPassword": "secret123",
	})
	s.Require().Equal(http.StatusCreated, r.Code, string(r.Raw))

	r = s.do(s.api, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "secret123"})
	s.Require().Equal(http.StatusOK, r.Code, string(r.Raw))
	tok, _ := r.Body["accessToken"].(string)
	s.Require().NotEmpty(tok)

	var refresh *http.Cookie
	for _, c := range r.Cookies {
		if c.Name == "refreshToken" {
			refresh = c
		}
	}
	s.Require().NotNil(refresh)
	return tok, refresh
}

func (s *httpSuite) loginAdmin() string {
	hash, err := utils.HashPassword("admin123")
	s.Require().NoError(err)
	s.Require().NoError(s.deps.Repos.Users.Create(context.Background(), &domain.User{
		ID: utils.NewID(), Name: "root", Email: "root@example.com", PasswordHash: hash, IsAdmin: true,
	}))
	r := s.do(s.api, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "root@example.com", "password": "admin123"})
	s.Require().Equal(http.StatusOK, r.Code, string(r.Raw))
	s.Require().Equal(true, r.Body["isAdmin"])
	return r.Body["accessToken"].(string)
}

func (s *httpSuite) createProject(token, title string, price float64) string {
	r := s.do(s.api, http.MethodPost, "/api/projects", token, map[string]any{
		"title": title, "description": "a project", "category": "web", "price": price,
	})
	s.Require().Equal(http.StatusCreated, r.Code, string(r.Raw))
	id, _ := r.Body["id"].(string)
	s.Require().NotEmpty(id)
	return id
}

func (s *httpSuite) TestHealth() {
	s.Equal(http.StatusOK, s.do(s.api, http.MethodGet, "/health", "", nil).Code)
	s.Equal(http.StatusOK, s.do(s.admin, http.MethodGet, "/health", "", nil).Code)
	s.Equal(http.StatusOK, s.do(s.api, http.MethodGet, "/metrics", "", nil).Code)
}

func (s *httpSuite) TestSignupLoginMe() {
	tok, refresh := s.login("alice", "alice@example.com")
	s.True(refresh.HttpOnly)
	s.Equal("/", refresh.Path)

	r := s.do(s.api, http.MethodGet, "/api/auth/me", tok, nil)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("alice", r.Body["name"])
	s.Equal("alice@example.com", r.Body["email"])
	s.Equal(false, r.Body["isAdmin"])
	s.NotContains(string(r.Raw), "password")
}

func (s *httpSuite) TestSignupValidation() {
	signup := func(body map[string]string) reply {
		return s.do(s.api, http.MethodPost, "/api/auth/signup", "", body)
	}
	cases := []struct {
		body map[string]string
		msg  string
	}{
		{map[string]string{"name": "bob", "email": "not-an-email", "password": "a", "confirmPassword": "a"}, "Invalid email address"},
		{map[string]string{"name": "bob", "email": "bob@example.com", "password": "a"}, "All fields are required"},
		{map[string]string{"name": "   ", "email": "bob@example.com", "password": "a", "confirmPassword": "a"}, "All fields are required"},
		{map[string]string{"name": "bob", "email": "bob@example.com", "password": strings.Repeat("p", 73), "confirmPassword": strings.Repeat("p", 73)}, "Password must be at most 72 characters"},
		// 字符数合规但字节数超出 bcrypt 上限
		{map[string]string{"name": "bob", "email": "bob@example.com", "password": strings.Repeat("密", 40), "confirmPassword": strings.Repeat("密", 40)}, "Password must be at most 72 bytes"},
	}
	for _, tc := range cases {
		r := signup(tc.body)
		s.Equal(http.StatusBadRequest, r.Code, tc.msg)
		s.Equal(tc.msg, r.msg())
	}

	r := s.do(s.api, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "bob", "email": "bob@example.com", "password": "a", "confirmPassword": "b",
	})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Passwords do not match", r.msg())

	s.login("bob", "bob@example.com")
	r = s.do(s.api, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "bob", "email": "bob@example.com", "password": "x", "confirmPassword": "x",
	})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Email already exists", r.msg())
}

func (s *httpSuite) TestLoginFailures() {
	miss := s.do(s.api, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com"})
	s.Equal(http.StatusBadRequest, miss.Code)
	s.Equal("Email and password are required", miss.msg())

	r := s.do(s.api, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "x"})
	s.Equal(http.StatusNotFound, r.Code)
	s.Equal("User not found", r.msg())

	s.login("carol", "carol@example.com")
	r = s.do(s.api, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "carol@example.com", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, r.Code)
	s.Equal("Invalid credentials", r.msg())
}

func (s *httpSuite) TestAuthGate() {
	r := s.do(s.api, http.MethodGet, "/api/auth/me", "", nil)
	s.Equal(http.StatusUnauthorized, r.Code)

	r = s.do(s.api, http.MethodGet, "/api/auth/me", "garbage", nil)
	s.Equal(http.StatusUnauthorized, r.Code)
	s.Equal("Invalid token", r.msg())

	past := &auth.JWTer{
		Secret: []byte(accessSecret),
		Issuer: "test",
		TTL:    time.Minute,
		Now:    func() time.Time { return time.Now().Add(-time.Hour) },
	}
	expired, _, err := past.Issue(utils.NewID(), "old")
	s.Require().NoError(err)
	r = s.do(s.api, http.MethodGet, "/api/auth/me", expired, nil)
	s.Equal(http.StatusUnauthorized, r.Code)
	s.Equal("Token expired", r.msg())
}

func (s *httpSuite) TestRefreshAndLogout() {
	tok, refresh := s.login("dave", "dave@example.com")

	r := s.do(s.api, http.MethodPost, "/api/auth/refresh-token", "", nil)
	s.Equal(http.StatusUnauthorized, r.Code)

	r = s.do(s.api, http.MethodPost, "/api/auth/refresh-token", "", nil, &http.Cookie{Name: "refreshToken", Value: "bogus"})
	s.Equal(http.StatusForbidden, r.Code)

	// access token 不能当 refresh token 用
	r = s.do(s.api, http.MethodPost, "/api/auth/refresh-token", "", nil, &http.Cookie{Name: "refreshToken", Value: tok})
	s.Equal(http.StatusForbidden, r.Code)

	r = s.do(s.api, http.MethodPost, "/api/auth/refresh-token", "", nil, refresh)
	s.Equal(http.StatusOK, r.Code)
	s.NotEmpty(r.Body["accessToken"])

	r = s.do(s.api, http.MethodPost, "/api/auth/logout", tok, nil, refresh)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("Logged out successfully", r.msg())

	r = s.do(s.api, http.MethodPost, "/api/auth/refresh-token", "", nil, refresh)
	s.Equal(http.StatusForbidden, r.Code)
	s.Equal("Token revoked", r.msg())

	r = s.do(s.api, http.MethodGet, "/api/auth/me", tok, nil)
	s.Equal(http.StatusUnauthorized, r.Code)
	s.Equal("Token revoked", r.msg())
}

func (s *httpSuite) TestCategoriesAdminOnly() {
	user, _ := s.login("erin", "erin@example.com")
	r := s.do(s.api, http.MethodPost, "/api/categories", user, map[string]string{"name": "web"})
	s.Equal(http.StatusForbidden, r.Code)
	s.Equal("Access denied. Admins only.", r.msg())

	admin := s.loginAdmin()
	r = s.do(s.api, http.MethodPost, "/api/categories", admin, map[string]string{"name": "web", "description": "sites"})
	s.Equal(http.StatusCreated, r.Code)
	s.Equal("Category created successfully", r.msg())

	r = s.do(s.api, http.MethodPost, "/api/categories", admin, map[string]string{"name": "web"})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Category already exists", r.msg())

	r = s.do(s.api, http.MethodPost, "/api/categories", admin, map[string]string{"description": "no name"})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Category name is required", r.msg())

	r = s.do(s.api, http.MethodGet, "/api/categories", "", nil)
	s.Equal(http.StatusOK, r.Code)
	var cats []domain.Category
	s.Require().NoError(json.Unmarshal(r.Raw, &cats))
	s.Len(cats, 1)
}

func (s *httpSuite) TestProjectOwnership() {
	owner, _ := s.login("frank", "frank@example.com")
	other, _ := s.login("grace", "grace@example.com")
	id := s.createProject(owner, "Shop", 20)

	r := s.do(s.api, http.MethodPut, "/api/projects/"+id, other, map[string]any{"title": "Stolen"})
	s.Equal(http.StatusForbidden, r.Code)
	s.Equal("Not authorized to update this project", r.msg())

	r = s.do(s.api, http.MethodDelete, "/api/projects/"+id, other, nil)
	s.Equal(http.StatusForbidden, r.Code)
	s.Equal("Not authorized to delete this project", r.msg())

	r = s.do(s.api, http.MethodPut, "/api/projects/"+id, owner, map[string]any{"price": 25})
	s.Equal(http.StatusOK, r.Code)
	s.Equal("Shop", r.Body["title"])
	s.EqualValues(25, r.Body["price"])

	r = s.do(s.api, http.MethodPut, "/api/projects/"+id, owner, map[string]any{"price": -1})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Price must not be negative", r.msg())

	r = s.do(s.api, http.MethodPut, "/api/projects/"+id, owner, map[string]any{"status": "done"})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Invalid project status", r.msg())

	r = s.do(s.api, http.MethodPost, "/api/projects/"+id+"/reviews", other, map[string]any{"rating": 6})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Rating must be between 1 and 5", r.msg())

	r = s.do(s.api, http.MethodPost, "/api/projects/"+id+"/reviews", other, map[string]any{"rating": 5, "comment": "great"})
	s.Equal(http.StatusCreated, r.Code)

	r = s.do(s.api, http.MethodGet, "/api/projects?search=shop", "", nil)
	s.Equal(http.StatusOK, r.Code)
	s.EqualValues(1, r.Body["pagination"].(map[string]any)["total"])

	r = s.do(s.api, http.MethodDelete, "/api/projects/"+id, owner, nil)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("Project deleted successfully", r.msg())

	r = s.do(s.api, http.MethodGet, "/api/projects/"+id, "", nil)
	s.Equal(http.StatusNotFound, r.Code)
}

func (s *httpSuite) TestCreateProjectValidation() {
	tok, _ := s.login("mallory", "mallory@example.com")
	cases := []struct {
		body map[string]any
		msg  string
	}{
		{map[string]any{"title": "No price"}, "Title and price are required"},
		{map[string]any{"price": 5}, "Title and price are required"},
		{map[string]any{"title": "Neg", "price": -3}, "Price must not be negative"},
		{map[string]any{"title": "Bad", "price": 3, "status": "done"}, "Invalid project status"},
		{map[string]any{"title": "Bad", "price": "free"}, "Invalid request"},
	}
	for _, tc := range cases {
		r := s.do(s.api, http.MethodPost, "/api/projects", tok, tc.body)
		s.Equal(http.StatusBadRequest, r.Code, tc.msg)
		s.Equal(tc.msg, r.msg())
	}
}

// multipart 更新：先校验归属，再删旧文件、传新文件并并入 files
func (s *httpSuite) TestProjectUpdateWithFile() {
	owner, _ := s.login("nina", "nina@example.com")
	other, _ := s.login("oscar", "oscar@example.com")
	id := s.createProject(owner, "Kit", 10)

	old, err := s.deps.Store.Upload(context.Background(), "old.txt", "text/plain", strings.NewReader("v1"))
	s.Require().NoError(err)
	r := s.do(s.api, http.MethodPut, "/api/projects/"+id, owner, map[string]any{"files": []string{old.URL}})
	s.Require().Equal(http.StatusOK, r.Code, string(r.Raw))

	put := func(token string, fields map[string]string) reply {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range fields {
			s.Require().NoError(mw.WriteField(k, v))
		}
		fw, err := mw.CreateFormFile("file", "v2.txt")
		s.Require().NoError(err)
		_, _ = fw.Write([]byte("v2"))
		s.Require().NoError(mw.Close())
		req := httptest.NewRequest(http.MethodPut, "/api/projects/"+id, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return s.serve(s.api, req)
	}

	r = put(other, map[string]string{"oldFileId": old.FileID})
	s.Equal(http.StatusForbidden, r.Code)
	s.Equal("Not authorized to update this project", r.msg())
	rc, err := s.deps.Store.Download(context.Background(), old.FileID)
	s.Require().NoError(err, "non-owner must not touch storage")
	_ = rc.Close()

	r = put(owner, map[string]string{"oldFileId": old.FileID, "title": "Kit v2", "price": "12.5"})
	s.Require().Equal(http.StatusOK, r.Code, string(r.Raw))
	s.Equal("Kit v2", r.Body["title"])
	s.EqualValues(12.5, r.Body["price"])
	files, _ := r.Body["files"].([]any)
	s.Require().Len(files, 1)
	s.NotEqual(old.URL, files[0])

	_, err = s.deps.Store.Download(context.Background(), old.FileID)
	s.ErrorIs(err, storage.ErrObjectNotFound)

	r = put(owner, map[string]string{"price": "-1"})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Price must not be negative", r.msg())
}

func (s *httpSuite) TestOrderFlow() {
	seller, _ := s.login("heidi", "heidi@example.com")
	buyer, _ := s.login("ivan", "ivan@example.com")
	pid := s.createProject(seller, "Bot", 42)

	r := s.do(s.api, http.MethodPost, "/api/orders", buyer, map[string]string{"projectId": pid})
	s.Require().Equal(http.StatusCreated, r.Code, string(r.Raw))
	s.Equal("Order placed successfully", r.msg())
	order := r.Body["order"].(map[string]any)
	s.Equal("pending", order["status"])
	s.EqualValues(42, order["amount"])
	oid := order["id"].(string)

	r = s.do(s.api, http.MethodPost, "/api/orders", buyer, map[string]string{"projectId": pid})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("You already ordered this project", r.msg())

	r = s.do(s.api, http.MethodPost, "/api/orders", buyer, map[string]string{"projectId": utils.NewID()})
	s.Equal(http.StatusNotFound, r.Code)

	r = s.do(s.api, http.MethodPost, "/api/orders", buyer, map[string]string{})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Project ID is required", r.msg())

	r = s.do(s.api, http.MethodGet, "/api/orders/my-orders", buyer, nil)
	s.Equal(http.StatusOK, r.Code)
	s.EqualValues(1, r.Body["totalOrders"])

	r = s.do(s.api, http.MethodGet, "/api/orders/my-orders", seller, nil)
	s.EqualValues(0, r.Body["totalOrders"])

	// 非管理员不能改状态
	r = s.do(s.api, http.MethodPut, "/api/orders/"+oid, buyer, map[string]string{"status": "completed"})
	s.Equal(http.StatusForbidden, r.Code)

	admin := s.loginAdmin()
	r = s.do(s.api, http.MethodGet, "/api/orders", admin, nil)
	s.EqualValues(1, r.Body["totalOrders"])

	r = s.do(s.api, http.MethodPut, "/api/orders/"+oid, admin, map[string]string{"status": "shipped"})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Invalid order status", r.msg())

	r = s.do(s.api, http.MethodPut, "/api/orders/"+oid, admin, map[string]string{"status": "completed"})
	s.Equal(http.StatusOK, r.Code)
	s.Equal("completed", r.Body["order"].(map[string]any)["status"])

	r = s.do(s.api, http.MethodPut, "/api/orders/"+oid, admin, map[string]string{"status": "cancelled"})
	s.Equal(http.StatusBadRequest, r.Code)

	r = s.do(s.admin, http.MethodGet, "/admin/v1/orders/stats/overview", admin, nil)
	s.Equal(http.StatusOK, r.Code)
	s.EqualValues(1, r.Body["totalOrders"])
	s.EqualValues(42, r.Body["totalRevenue"])

	s.Equal([]string{events.OrderPlaced, events.OrderStatusChanged}, s.events.Keys())

	r = s.do(s.api, http.MethodDelete, "/api/orders/"+oid, admin, nil)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("Order deleted successfully", r.msg())
}

func (s *httpSuite) TestAdminEngine() {
	user, _ := s.login("judy", "judy@example.com")
	r := s.do(s.admin, http.MethodGet, "/admin/v1/users", user, nil)
	s.Equal(http.StatusForbidden, r.Code)

	r = s.do(s.admin, http.MethodGet, "/admin/v1/users", "", nil)
	s.Equal(http.StatusUnauthorized, r.Code)

	admin := s.loginAdmin()
	r = s.do(s.admin, http.MethodGet, "/admin/v1/users", admin, nil)
	s.Equal(http.StatusOK, r.Code)
	s.EqualValues(2, r.Body["totalUsers"])

	r = s.do(s.admin, http.MethodPost, "/admin/v1/users", admin, map[string]any{
		"name": "kim", "email": "kim@example.com", "password": "pw", "isAdmin": false,
	})
	s.Require().Equal(http.StatusCreated, r.Code, string(r.Raw))
	kid := r.Body["user"].(map[string]any)["id"].(string)

	r = s.do(s.admin, http.MethodPost, "/admin/v1/users", admin, map[string]any{
		"name": "kim2", "email": "kim2", "password": "pw",
	})
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("Invalid email address", r.msg())

	r = s.do(s.admin, http.MethodPut, "/admin/v1/users/"+kid, admin, map[string]any{"isAdmin": true})
	s.Equal(http.StatusOK, r.Code)
	s.Equal(true, r.Body["user"].(map[string]any)["isAdmin"])

	r = s.do(s.admin, http.MethodGet, "/admin/v1/users/stats/overview", admin, nil)
	s.Equal(http.StatusOK, r.Code)
	s.EqualValues(3, r.Body["totalUsers"])
	s.EqualValues(2, r.Body["adminUsers"])

	r = s.do(s.admin, http.MethodDelete, "/admin/v1/users/"+kid, admin, nil)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("User deleted successfully", r.msg())

	r = s.do(s.api, http.MethodGet, "/api/users/"+kid, "", nil)
	s.Equal(http.StatusNotFound, r.Code)
}

func (s *httpSuite) TestUploadDownloadDelete() {
	tok, _ := s.login("leo", "leo@example.com")

	upload := func(path, field, token string) reply {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if field != "" {
			fw, err := mw.CreateFormFile(field, "hello.txt")
			s.Require().NoError(err)
			_, _ = fw.Write([]byte("hello bytes"))
		}
		s.Require().NoError(mw.Close())
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return s.serve(s.api, req)
	}

	s.Equal(http.StatusUnauthorized, upload("/api/files/upload", "file", "").Code)

	r := upload("/api/files/upload", "", tok)
	s.Equal(http.StatusBadRequest, r.Code)
	s.Equal("No file uploaded", r.msg())

	r = upload("/api/projects/upload-thumbnail", "thumbnail", tok)
	s.Equal(http.StatusOK, r.Code)
	s.NotEmpty(r.Body["fileUrl"])

	r = upload("/api/files/upload", "file", tok)
	s.Require().Equal(http.StatusOK, r.Code, string(r.Raw))
	s.Equal("File uploaded successfully", r.msg())
	id := r.Body["fileId"].(string)

	r = s.do(s.api, http.MethodGet, "/api/files/download/"+id, tok, nil)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("hello bytes", string(r.Raw))
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Disposition"))
	s.Require().NoError(err)
	s.Equal(id, params["filename"])

	r = s.do(s.api, http.MethodDelete, "/api/files/"+id, tok, nil)
	s.Equal(http.StatusOK, r.Code)
	s.Equal("File deleted successfully", r.msg())

	r = s.do(s.api, http.MethodGet, "/api/files/download/"+id, tok, nil)
	s.Equal(http.StatusNotFound, r.Code)
	s.Equal("File not found", r.msg())
}

func TestRegistryPriority(t *testing.T) {
	var order []string
	reg := &Registry{}
	reg.Register(mountFn{"b", 200, &order}, mountFn{"a", 10, &order}, struct{}{})

	r := gin.New()
	reg.MountAPI(r.Group("/api"))
	reg.MountAdmin(r.Group("/admin"))
	require.Equal(t, []string{"api:a", "api:b", "admin:a", "admin:b"}, order)
}

type mountFn struct {
	name string
	prio int
	log  *[]string
}

func (m mountFn) MountAPI(*gin.RouterGroup)   { *m.log = append(*m.log, "api:"+m.name) }
func (m mountFn) MountAdmin(*gin.RouterGroup) { *m.log = append(*m.log, "admin:"+m.name) }
func (m mountFn) Priority() int               { return m.prio }
