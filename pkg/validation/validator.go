package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks v against its `validate` struct tags and reports
// every failing field.
func ValidateStruct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
}

// formatValidationError converts validator errors into field-level messages
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
