package dto

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the "username" and "slug" tags to gin's validator
// and makes field errors report JSON names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonName)
		if err := v.RegisterValidation("username", matches(usernameRe)); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("slug", matches(slugRe))
	})
	return registerErr
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
