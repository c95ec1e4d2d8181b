package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bytebazaar/internal/domain"
	resp "bytebazaar/internal/transport/http/response"
)

type EZ struct{ g gin.IRoutes }

func New(g gin.IRoutes) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
	BindAuto  Binder = "auto"  // 按 Content-Type 选 JSON 或 multipart 表单
)

// AErr 直接指定状态码的错误
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string
	Binder  Binder
	Status  int    // 成功状态码，默认 200
	Fail    string // 500 时的提示语
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction mws 在 handler 之前执行（鉴权等）
func RegisterAction[I any, O any](e EZ, a Action[I, O], mws ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindAuto:
			bindErr = c.ShouldBind(&in)
		}
		if bindErr != nil {
			resp.Abort(c, http.StatusBadRequest, bindMessage(bindErr, in))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err, a.Fail)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	handlers := append(append([]gin.HandlerFunc{}, mws...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// Fail 统一错误映射：领域错误按分类给状态码，其余一律 500 并附原始错误
func Fail(c *gin.Context, err error, fallback string) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= http.StatusInternalServerError {
			c.AbortWithStatusJSON(ae.Code, resp.WithCause(ae.Code, ae.Msg, ae.Err))
			return
		}
		resp.Abort(c, ae.Code, ae.Msg)
		return
	}
	if code, ok := StatusOf(err); ok {
		resp.Abort(c, code, domain.Message(err, ""))
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp.WithCause(http.StatusInternalServerError, fallback, err))
}

// StatusOf 领域错误分类 → HTTP 状态码；重复资源按 400 返回
func StatusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	}
	return 0, false
}
