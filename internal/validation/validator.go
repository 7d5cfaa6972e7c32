// Package validation wraps a shared go-playground/validator instance with the
// rules used by the catalog loader and user registration.
//
// Custom tags:
//
//	username  letters, digits and . @ + - _ (the account name charset)
//	tagcolor  #RGB or #RRGGBB
//	slug      letters, digits, - and _
//
// Register installs the same tags on another validator, e.g. the one gin uses
// for request binding.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	colorPattern    = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the process-wide validator with the custom tags registered
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := Register(validate); err != nil {
			panic(fmt.Sprintf("validation: registering custom validators: %v", err))
		}
	})
	return validate
}

// Register installs the custom tags on v
func Register(v *validator.Validate) error {
	rules := map[string]*regexp.Regexp{
		"username": usernamePattern,
		"tagcolor": colorPattern,
		"slug":     slugPattern,
	}
	for tag, pattern := range rules {
		pattern := pattern
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidUsername reports whether name uses only the allowed account charset
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// Struct validates s and flattens the failures into one readable error.
// The first failing field is returned alongside for error reporting.
func Struct(s interface{}) (field string, err error) {
	err = Get().Struct(s)
	if err == nil {
		return "", nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "", err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, translate(fe))
	}
	return strings.ToLower(fieldErrs[0].Field()), errors.New(strings.Join(msgs, "; "))
}

func translate(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "tagcolor":
		return fmt.Sprintf("%s must be a hex color like #RGB or #RRGGBB, got %q", field, fe.Value())
	case "slug":
		return fmt.Sprintf("%s must contain only letters, digits, '-' and '_', got %q", field, fe.Value())
	case "username":
		return fmt.Sprintf("%s contains a forbidden character", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
