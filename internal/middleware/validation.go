package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]*[0-9]$`)
	iinPattern   = regexp.MustCompile(`^[0-9]{12}$`)

	registerOnce sync.Once
	registerErr  error
)

const (
	minPhoneLen = 10
	maxPhoneLen = 20
)

// ValidPhone accepts 10 to 20 characters of digits with an optional leading
// "+" and space, dash or parenthesis separators.
func ValidPhone(s string) bool {
	return len(s) >= minPhoneLen && len(s) <= maxPhoneLen && phonePattern.MatchString(s)
}

// ValidIIN accepts exactly 12 digits
func ValidIIN(s string) bool {
	return iinPattern.MatchString(s)
}

// RegisterValidators installs the phone and iin tags on gin's validator and
// reports fields by their JSON names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		if registerErr = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		}); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("iin", func(fl validator.FieldLevel) bool {
			return ValidIIN(fl.Field().String())
		})
	})
	return registerErr
}
