package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	dErrors "inkwell/pkg/domain-errors"
	s "inkwell/pkg/string"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 6

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= MinPasswordLength
	})
	return v
}

// Rule maps a failing tag to a fixed client-facing error.
type Rule struct {
	Tag     string
	Code    dErrors.Code
	Message string
}

// Validate checks req against its validate tags. Rules are consulted in
// order across all failing fields, so an earlier rule wins even when a later
// field broke it. Failures no rule covers become a validation error naming
// the first failing field.
func Validate(req any, rules ...Rule) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, rule := range rules {
			for _, fe := range validationErrs {
				if fe.ActualTag() == rule.Tag {
					return dErrors.New(rule.Code, rule.Message)
				}
			}
		}
	}
	return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "password":
		return fmt.Sprintf("%s must be at least %d characters", field, MinPasswordLength)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
