package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput runs struct validation and folds the first failure into ErrInvalidInput.
func checkInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fe := fieldErrs[0]
	field := jsonName(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	case "email":
		return fmt.Errorf("%w: %s must be a valid email address", ErrInvalidInput, field)
	case "min":
		return fmt.Errorf("%w: %s must be at least %s characters", ErrInvalidInput, field, fe.Param())
	case "gte":
		return fmt.Errorf("%w: %s must be %s or greater", ErrInvalidInput, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of %s", ErrInvalidInput, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Errorf("%w: %s is invalid", ErrInvalidInput, field)
	}
}

// jsonName turns "courseFields.Lessons[0].Title" into "lessons[0].title".
func jsonName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToLower(part[:1]) + part[1:]
	}
	return strings.Join(parts, ".")
}
