package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// reaction_type 标签接受的取值，放在这里避免依赖 model 包
var reactionTypes = map[string]struct{}{"LIKE": {}, "LOVE": {}, "SUPPORT": {}}

var roles = map[string]struct{}{"user": {}, "moderator": {}, "admin": {}}

// Register 向 gin 的默认校验器注册自定义规则，并使用 json 标签作为字段名
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	rules := map[string]validator.Func{
		"username":      func(fl validator.FieldLevel) bool { return IsUsername(fl.Field().String()) },
		"password":      func(fl validator.FieldLevel) bool { return IsStrongPassword(fl.Field().String()) },
		"reaction_type": func(fl validator.FieldLevel) bool { return IsReactionType(fl.Field().String()) },
		"role":          func(fl validator.FieldLevel) bool { _, ok := roles[fl.Field().String()]; return ok },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func IsUsername(s string) bool { return usernamePattern.MatchString(s) }

func IsReactionType(s string) bool {
	_, ok := reactionTypes[s]
	return ok
}

// IsStrongPassword 8-100 位，需含大写、小写字母以及数字或符号
func IsStrongPassword(s string) bool {
	if len(s) < 8 || len(s) > 100 {
		return false
	}
	var upper, lower, other bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}
	return upper && lower && other
}

// FieldErrors 把 ValidationErrors 转成 field -> message
func FieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid id"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "username":
		return "must be 3-20 letters, numbers or underscores"
	case "password":
		return "must be 8-100 characters with an upper case letter, a lower case letter and a number or symbol"
	case "reaction_type":
		return "must be one of: LIKE LOVE SUPPORT"
	case "role":
		return "must be one of: user moderator admin"
	}
	return "is invalid"
}
