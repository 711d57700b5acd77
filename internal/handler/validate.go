package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-app/internal/logging"
)

// fieldError is one entry of a 400 {"errors": [...]} response.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in errors are taken from the json tags so they match the request body.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt only looks at the first 72 bytes, so passwords are capped in bytes
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// fieldErrors renders validator errors in request field order.  ok is false
// for anything that is not a validation failure.
func fieldErrors(err error) (out []fieldError, ok bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	for _, fe := range ve {
		out = append(out, fieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out, true
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// invalid answers a failed c.Validate: 400 with the field errors, or 500
// when the validator itself could not run.
func invalid(c echo.Context, log logging.Logger, err error) error {
	if errs, ok := fieldErrors(err); ok {
		return validationFailed(c, errs)
	}
	return internalError(c, log, "validate request", err)
}
