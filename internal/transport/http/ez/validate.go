package ez

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// 入参结构体上的提示语：
//
//	msg:"..."         该字段任何规则失败时使用
//	msg_<rule>:"..."  只在某条规则失败时使用，优先于 msg
//
// 都没有时按规则生成默认提示
const msgTag = "msg"

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// 提示里用 json/form 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
}

// bindMessage 把绑定错误翻成 400 提示语；非校验错误（JSON 语法等）统一 Invalid request
func bindMessage(err error, in any) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	if f, ok := fieldOf(reflect.TypeOf(in), fe.StructField()); ok {
		if m := f.Tag.Get(msgTag + "_" + fe.Tag()); m != "" {
			return m
		}
		if m := f.Tag.Get(msgTag); m != "" {
			return m
		}
	}
	return defaultMessage(fe)
}

// fieldOf 在顶层（含匿名嵌入）里按 Go 字段名找
func fieldOf(t reflect.Type, name string) (reflect.StructField, bool) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	return t.FieldByName(name)
}

func defaultMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return name + " is required"
	case "email":
		return "Invalid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		if isText(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max", "lte":
		if isText(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	}
	return name + " is invalid"
}

func isText(k reflect.Kind) bool { return k == reflect.String }
