package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// GradePattern accepts letter grades such as A, B+, C- and short codes such as P or 85
	GradePattern = `^[A-Za-z0-9][A-Za-z0-9+\-.]{0,7}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Grade *regexp.Regexp
}{
	Grade: regexp.MustCompile(GradePattern),
}

var validate = New()

// New creates a validator with the application's custom rules registered
func New() *validator.Validate {
	v := validator.New()
	RegisterRules(v)
	return v
}

// RegisterRules adds the custom tags to v and reports field names by their form or json tag
func RegisterRules(v *validator.Validate) {
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		grade := fl.Field().String()
		return grade == "" || CompiledPatterns.Grade.MatchString(grade)
	})

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
}

// Struct validates s with the shared validator
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// FormatFieldError creates a human-readable message for a failed field
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "grade":
		return e.Field() + " is not a valid grade"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
