package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// utoridPattern matches account identifiers: lowercase letters and digits,
// 2 to 32 characters.
var utoridPattern = regexp.MustCompile(`^[a-z0-9]{2,32}$`)

// New returns a validator with the custom tags the request DTOs use. Both
// tags pass non-string fields through so the standard validators report the
// type mismatch instead.
func New() *validator.Validate {
	v := validator.New()

	// "notblank" rejects strings that are empty after trimming whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return strings.TrimSpace(str) != ""
	})

	// "utorid" enforces the account identifier shape.
	_ = v.RegisterValidation("utorid", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return utoridPattern.MatchString(str)
	})

	return v
}
