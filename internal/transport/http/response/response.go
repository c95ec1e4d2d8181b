package response

import "github.com/gin-gonic/gin"

// Resp 错误 / 提示类响应体；error 只在 500 时附带原始错误
type Resp struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func Msg(msg string) Resp { return Resp{Message: msg} }

// Error customMsg 为空时用默认提示语
func Error(code int, customMsg string) Resp {
	if customMsg == "" {
		customMsg = DefaultMsg(code)
	}
	return Resp{Message: customMsg}
}

func WithCause(code int, msg string, cause error) Resp {
	r := Error(code, msg)
	if cause != nil {
		r.Error = cause.Error()
	}
	return r
}

func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
