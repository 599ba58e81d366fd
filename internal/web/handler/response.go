package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/confstore/confstore/internal/configstore"
)

// Response is the envelope of every api response.
type Response struct {
	Code int    `json:"code"`
	I18n string `json:"i18n"`
	Data any    `json:"data,omitempty"`
	Meta any    `json:"meta,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Send writes the envelope with code as http status.
func Send(c fiber.Ctx, code int, i18n string, data, meta any) error {
	return c.Status(code).JSON(Response{
		Code: code,
		I18n: i18n,
		Data: data,
		Meta: meta,
	})
}

// OK writes a 200 envelope.
func OK(c fiber.Ctx, i18n string, data any) error {
	return Send(c, fiber.StatusOK, i18n, data, nil)
}

// ErrorHandler renders every error as envelope. It is used as fiber ErrorHandler.
//
//	validation  -> 422 with the validation code as i18n
//	not found   -> 404 CONFIG_NOT_FOUND
//	fiber.Error -> its status
//	anything else -> 500 #INTERNAL_SERVER_ERROR
func ErrorHandler(c fiber.Ctx, err error) error {
	var (
		validationErr *configstore.ValidationError
		fieldErrs     *FieldErrors
		notFoundErr   *NotFoundError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &fieldErrs):
		return Send(c, fiber.StatusUnprocessableEntity, fieldErrs.I18n(), fieldErrs.Fields, nil)
	case errors.As(err, &validationErr):
		return Send(c, fiber.StatusUnprocessableEntity, validationErr.Code, []FieldError{{
			Field:   validationErr.Field,
			Code:    validationErr.Code,
			Message: validationErr.Message,
		}}, nil)
	case errors.Is(err, configstore.ErrNotFound):
		var data any
		if errors.As(err, &notFoundErr) {
			data = fiber.Map{"key": notFoundErr.Key}
		}

		return Send(c, fiber.StatusNotFound, I18nConfigNotFound, data, nil)
	case errors.As(err, &fiberErr):
		i18n := I18nInternalError

		switch fiberErr.Code {
		case fiber.StatusNotFound:
			i18n = I18nRouteNotFound
		case fiber.StatusServiceUnavailable:
			i18n = I18nUnavailable
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			i18n = I18nInvalidBody
		}

		return Send(c, fiberErr.Code, i18n, nil, nil)
	}

	if !errors.Is(err, configstore.ErrStorage) {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
	}

	return Send(c, fiber.StatusInternalServerError, I18nInternalError, nil, nil)
}

// NotFoundError carries the normalized key of a failed single-key lookup.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return "config " + e.Key + " not found"
}

// Is makes errors.Is(err, configstore.ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == configstore.ErrNotFound
}
