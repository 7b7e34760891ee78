package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/pkg/response"
)

// surface selects the status mapping. The stateless routes keep the
// statuses their existing clients expect; the session API reports
// upstream trouble as 502.
type surface int

const (
	compatSurface surface = iota
	sessionSurface
)

func statusFor(err error, s surface) int {
	switch {
	case errors.Is(err, model.ErrMissingInput):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, model.ErrConfig):
		return fiber.StatusInternalServerError
	case errors.Is(err, model.ErrUpstreamRejected):
		if s == compatSurface {
			return fiber.StatusBadRequest
		}
		return fiber.StatusBadGateway
	case errors.Is(err, model.ErrUpstream), errors.Is(err, model.ErrJobFailed):
		if s == compatSurface {
			return fiber.StatusInternalServerError
		}
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// writeError maps err onto the error envelope
func writeError(c *fiber.Ctx, err error, s surface) error {
	return response.Error(c, statusFor(err, s), model.ErrorCode(err), err.Error(), nil)
}

// writeErrorDetails is writeError with a short message up front and the
// cause in details
func writeErrorDetails(c *fiber.Ctx, err error, s surface, message string) error {
	return response.Error(c, statusFor(err, s), model.ErrorCode(err), message, err.Error())
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
