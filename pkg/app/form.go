package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 所有错误拼接为一行
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ", ")
}

// MapsToString field -> message
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid binds query/form/json into v and runs validator tags.
// Messages are translated with the translator set by the Lang middleware.
// BindAndValid 绑定并校验参数，错误信息使用 Lang 中间件设置的翻译器
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors

	if err := c.ShouldBind(v); err != nil {
		return false, toValidErrors(c, err)
	}

	return true, errs
}

func toValidErrors(c *gin.Context, err error) ValidErrors {
	var errs ValidErrors

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(errs, &ValidError{Key: "request", Message: err.Error()})
	}

	trans, _ := c.Value("trans").(ut.Translator)
	for _, fe := range verrs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: fe.Field(), Message: msg})
	}
	return errs
}
