package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/pkg/response"
)

// MusicAPI submits jobs and answers single status queries
type MusicAPI interface {
	Submit(ctx context.Context, req *model.MusicJobRequest) (string, error)
	Status(ctx context.Context, taskID string) (*model.MusicStatusResponse, error)
}

type MusicHandler struct {
	service   MusicAPI
	validator *validator.Validate
}

func NewMusicHandler(svc MusicAPI, v *validator.Validate) *MusicHandler {
	return &MusicHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /music-generate. Jobs are always custom-mode with
// vocals, whatever the body says.
func (h *MusicHandler) Generate(c *fiber.Ctx) error {
	var req model.MusicGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return response.ValidationError(c, "Missing prompt", fiber.Map{"prompt": "required"})
	}

	gender := model.ParseVocalGender(req.VocalGender)
	taskID, err := h.service.Submit(c.Context(), &model.MusicJobRequest{
		Lyrics:       req.Prompt,
		StyleTags:    model.StyleTags(strings.TrimSpace(req.Style), gender),
		Title:        strings.TrimSpace(req.Title),
		VocalGender:  gender,
		CustomMode:   true,
		Instrumental: false,
		Model:        strings.TrimSpace(req.Model),
	})
	if err != nil {
		return writeErrorDetails(c, err, compatSurface, "Failed to start music generation")
	}

	return response.OK(c, model.MusicGenerateResponse{
		Success: true,
		TaskID:  taskID,
	})
}

// Status handles GET /music-status/:taskId with a single upstream query
func (h *MusicHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Missing task id", nil)
	}

	result, err := h.service.Status(c.Context(), taskID)
	if err != nil {
		return writeError(c, err, compatSurface)
	}

	return response.OK(c, result)
}

// Callback handles POST /music-callback. The backend requires a callback
// address but completion is detected by polling, so the payload is dropped.
func (h *MusicHandler) Callback(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"received": true})
}
