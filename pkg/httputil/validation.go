package httputil

import (
	"github.com/go-playground/validator/v10"
	"github.com/timegrid/timegrid-backend/pkg/errors"
)

var validate = validator.New()

// Validate runs the struct's validator tags and folds any failures into a
// single Validation AppError keyed by field name.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	details := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		details[fe.Field()] = describeFailure(fe)
	}

	return errors.Validation(details)
}

func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date in the format " + fe.Param()
	default:
		return "invalid value"
	}
}
