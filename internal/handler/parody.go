package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/internal/service"
	"github.com/makeaparody/api/pkg/response"
)

type ParodyHandler struct {
	service   service.LyricRewriter
	validator *validator.Validate
}

func NewParodyHandler(svc service.LyricRewriter, v *validator.Validate) *ParodyHandler {
	return &ParodyHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /parody-generate
func (h *ParodyHandler) Generate(c *fiber.Ctx) error {
	var req model.ParodyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Missing lyrics or parody topic", formatValidationErrors(err))
	}

	result, err := h.service.Rewrite(c.Context(), &req)
	if err != nil {
		return writeErrorDetails(c, err, compatSurface, "Failed to generate parody")
	}

	return response.OK(c, model.ParodyGenerateResponse{
		OK:              true,
		GeneratedParody: result.Text,
	})
}
