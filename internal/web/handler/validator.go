package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/confstore/confstore/internal/configstore"
)

type (
	// XValidator validates request structs with go-playground/validator.
	XValidator struct {
		validator *validator.Validate
	}

	// FieldErrors is returned for requests failing struct validation.
	FieldErrors struct {
		Fields []FieldError
	}
)

// NewValidator creates a validator reporting json field names.
func NewValidator() *XValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &XValidator{validator: v}
}

// Validate returns nil or *FieldErrors listing every failed field.
func (x *XValidator) Validate(data any) error {
	err := x.validator.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err //nolint:wrapcheck
	}

	out := &FieldErrors{Fields: make([]FieldError, len(validationErrors))}
	for i, fe := range validationErrors {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Code:    codeOf(fe.Field()),
			Message: "failed on '" + fe.Tag() + "'",
		}
	}

	return out
}

// Bind decodes the json body into out and validates it.
func (x *XValidator) Bind(c fiber.Ctx, out any) error {
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(out); err != nil {
			return &FieldErrors{Fields: []FieldError{{
				Field:   "body",
				Code:    I18nInvalidBody,
				Message: err.Error(),
			}}}
		}
	}

	return x.Validate(out)
}

func (e *FieldErrors) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Code
	}

	return "invalid request: " + strings.Join(parts, ", ")
}

// Is makes errors.Is(err, configstore.ErrValidation) hold.
func (e *FieldErrors) Is(target error) bool {
	return target == configstore.ErrValidation
}

// I18n is the code of the first failed field.
func (e *FieldErrors) I18n() string {
	if len(e.Fields) == 0 {
		return I18nInvalidBody
	}

	return e.Fields[0].Code
}

func codeOf(field string) string {
	switch field {
	case "key":
		return configstore.CodeKeyTooShort
	case "keys":
		return configstore.CodeKeysEmpty
	case "page":
		return configstore.CodeInvalidPage
	case "limit":
		return configstore.CodeInvalidLimit
	case "sort":
		return configstore.CodeInvalidSort
	case "value":
		return configstore.CodeInvalidValue
	default:
		return I18nInvalidBody
	}
}
