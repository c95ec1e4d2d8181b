package router

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/core/cache"
	"bytebazaar/internal/core/events"
	"bytebazaar/internal/core/server"
	"bytebazaar/internal/core/storage"
	"bytebazaar/internal/repo"
	"bytebazaar/internal/service"
	"bytebazaar/internal/transport/http/handler"
	mdw "bytebazaar/internal/transport/http/middleware"
)

// Limits 进程级限流参数，零值字段使用默认
type Limits struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64
	PerIPBurst  int
	Concurrency int64
	MaxBodyMB   int64
	Timeout     time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.PerIPRPS <= 0 {
		l.PerIPRPS = 20
	}
	if l.PerIPBurst <= 0 {
		l.PerIPBurst = 40
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 300
	}
	if l.MaxBodyMB <= 0 {
		l.MaxBodyMB = 16
	}
	if l.Timeout <= 0 {
		l.Timeout = 30 * time.Second
	}
	return l
}

// Deps 两个 engine 共享的依赖
type Deps struct {
	Log          *zap.Logger
	Repos        repo.Set
	Tokens       *auth.TokenService
	Deny         auth.Denylist
	Cache        *cache.Cache // 可为 nil
	Store        storage.Provider
	Events       events.Publisher
	TmpDir       string
	SecureCookie bool
	Mode         string
	ClientURLs   []string
	Limits       Limits
}

func (d Deps) gates() handler.Gates {
	return handler.Gates{
		Auth:  mdw.Authenticate(d.Tokens, d.Deny, d.Log),
		Admin: mdw.RequireAdmin(d.Repos.Users, d.Log),
	}
}

func (d Deps) publisher() events.Publisher {
	if d.Events == nil {
		return events.Noop{}
	}
	return d.Events
}

func (d Deps) tmpDir() string {
	if d.TmpDir == "" {
		return os.TempDir()
	}
	return d.TmpDir
}

// modules 组装 service + handler 并登记到 Registry
func (d Deps) modules() *Registry {
	g := d.gates()
	users := service.NewUserService(d.Repos.Users, d.Log)

	reg := &Registry{}
	reg.Register(
		&handler.AuthHandler{
			Svc:          service.NewAuthService(d.Repos.Users, d.Tokens, d.Deny, d.Log),
			Gates:        g,
			SecureCookie: d.SecureCookie,
			Log:          d.Log,
		},
		&handler.CategoryHandler{Svc: service.NewCategoryService(d.Repos.Categories, d.Cache, d.Log), Gates: g},
		&handler.ProjectHandler{Svc: service.NewProjectService(d.Repos.Projects, d.Log), Store: d.Store, TmpDir: d.tmpDir(), Gates: g, Log: d.Log},
		&handler.OrderHandler{
			Svc:   service.NewOrderService(d.Repos.Orders, d.Repos.Projects, d.publisher(), d.Log),
			Users: d.Repos.Users,
			Gates: g,
		},
		&handler.FileHandler{Store: d.Store, TmpDir: d.tmpDir(), Gates: g, Log: d.Log},
		&handler.UserHandler{Svc: users},
	)
	return reg
}

// baseEngine 公共中间件链
func (d Deps) baseEngine() *gin.Engine {
	lim := d.Limits.withDefaults()
	r := server.NewRouter(d.Log, server.Options{Mode: d.Mode, ClientURLs: d.ClientURLs})
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyMB<<20),
		mdw.Timeout(lim.Timeout),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)
	return r
}
