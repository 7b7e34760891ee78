package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/internal/service"
	"github.com/makeaparody/api/pkg/response"
)

type LyricsHandler struct {
	service service.LyricsFetcher
}

func NewLyricsHandler(svc service.LyricsFetcher) *LyricsHandler {
	return &LyricsHandler{
		service: svc,
	}
}

// Get handles GET /lyrics?song=&artist=
func (h *LyricsHandler) Get(c *fiber.Ctx) error {
	query := model.NewSongQuery(c.Query("song"), c.Query("artist"))
	if query.Title == "" {
		return response.ValidationError(c, "Missing song title", fiber.Map{"song": "required"})
	}

	result, err := h.service.FetchLyrics(c.Context(), query)
	if err != nil {
		return writeError(c, err, compatSurface)
	}

	return response.OK(c, result)
}
