package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateBody checks req against its validate tags and turns failures into
// a ValidationError with one message per field.
func validateBody(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fieldMessage(fe))
	}
	return apperrors.NewValidationError(details...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", fe.Field())
	}
}

// typeMismatch reports a JSON value of the wrong type for its field.
func typeMismatch(err *json.UnmarshalTypeError) error {
	var want string
	switch err.Type.Kind() {
	case reflect.String:
		want = "a string"
	case reflect.Bool:
		want = "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		want = "a number"
	case reflect.Slice, reflect.Array:
		want = "an array"
	default:
		want = "an object"
	}
	return apperrors.NewValidationError(fmt.Sprintf("%q must be %s", err.Field, want))
}

var errMalformedBody = apperrors.NewValidationError(`"value" must be a JSON object`)
