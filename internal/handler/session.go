package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/internal/pipeline"
	"github.com/makeaparody/api/internal/service"
	ws "github.com/makeaparody/api/internal/websocket"
	"github.com/makeaparody/api/pkg/response"
)

type SearchRequest struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

type ParodyTopicRequest struct {
	Topic string `json:"topic"`
}

type MusicRequest struct {
	Style       string `json:"style" validate:"max=200"`
	Title       string `json:"title" validate:"max=120"`
	VocalGender string `json:"vocalGender" validate:"omitempty,oneof=any male female"`
	Model       string `json:"model"`
}

// SessionHandler drives per-session pipeline controllers
type SessionHandler struct {
	store     *pipeline.Store
	hub       *ws.Hub
	validator *validator.Validate
}

func NewSessionHandler(store *pipeline.Store, hub *ws.Hub, v *validator.Validate) *SessionHandler {
	return &SessionHandler{
		store:     store,
		hub:       hub,
		validator: v,
	}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	ctrl := h.store.Create()
	return response.Created(c, ctrl.Snapshot())
}

// Get handles GET /api/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	ctrl, err := h.store.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err, sessionSurface)
	}
	return response.OK(c, ctrl.Snapshot())
}

// Delete handles DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.Delete(c.Params("id")); err != nil {
		return writeError(c, err, sessionSurface)
	}
	return response.NoContent(c)
}

// Search handles POST /api/sessions/:id/search. Lookup failures are
// reported per stage inside the snapshot.
func (h *SessionHandler) Search(c *fiber.Ctx) error {
	ctrl, err := h.store.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err, sessionSurface)
	}

	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	snap, err := ctrl.Search(c.Context(), model.NewSongQuery(req.Song, req.Artist))
	if err != nil {
		return writeError(c, err, sessionSurface)
	}
	return response.OK(c, snap)
}

// Parody handles POST /api/sessions/:id/parody
func (h *SessionHandler) Parody(c *fiber.Ctx) error {
	ctrl, err := h.store.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err, sessionSurface)
	}

	var req ParodyTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	snap, err := ctrl.Rewrite(c.Context(), req.Topic)
	if err != nil {
		return writeError(c, err, sessionSurface)
	}
	return response.OK(c, snap)
}

// Music handles POST /api/sessions/:id/music. Polling continues in the
// background; progress is visible via GET or the websocket.
func (h *SessionHandler) Music(c *fiber.Ctx) error {
	ctrl, err := h.store.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err, sessionSurface)
	}

	var req MusicRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	snap, err := ctrl.GenerateMusic(c.Context(), service.MusicOptions{
		Style:       req.Style,
		Title:       req.Title,
		VocalGender: model.ParseVocalGender(req.VocalGender),
		Model:       strings.TrimSpace(req.Model),
	})
	if err != nil {
		return writeError(c, err, sessionSurface)
	}
	return response.Accepted(c, snap)
}

// Cancel handles POST /api/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	ctrl, err := h.store.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err, sessionSurface)
	}
	return response.OK(c, ctrl.Cancel())
}

// RequireSession rejects websocket upgrades for unknown sessions
func (h *SessionHandler) RequireSession(c *fiber.Ctx) error {
	if _, err := h.store.Get(c.Params("id")); err != nil {
		return writeError(c, err, sessionSurface)
	}
	return c.Next()
}

// Stream handles GET /ws/sessions/:id, sending the current snapshot and
// then every change.
func (h *SessionHandler) Stream(c *websocket.Conn) {
	id := c.Params("id")
	ctrl, err := h.store.Get(id)
	if err != nil {
		_ = c.Close()
		return
	}
	h.hub.HandleConnection(c, id, ctrl.Snapshot)
}
