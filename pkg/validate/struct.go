package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct runs the `validate` tags of s and flattens field errors into one
// message, e.g. "email: must be a valid email; password: min 8".
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+": "+describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Message strips the sentinel prefix for use in responses.
func Message(err error) string {
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "min " + fe.Param()
	case "max":
		return "max " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "numeric":
		return "must contain digits only"
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	}
	return "is invalid"
}
