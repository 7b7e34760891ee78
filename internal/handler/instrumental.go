package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/api/youtube/v3"

	"github.com/makeaparody/api/pkg/response"
)

// InstrumentalSearcher runs a biased backing-track search
type InstrumentalSearcher interface {
	Search(ctx context.Context, text, channelID string) (*youtube.SearchListResponse, error)
}

type InstrumentalHandler struct {
	service InstrumentalSearcher
}

func NewInstrumentalHandler(svc InstrumentalSearcher) *InstrumentalHandler {
	return &InstrumentalHandler{
		service: svc,
	}
}

// Search handles GET /instrumental-search. Only q and channelId are honoured;
// the result is always at most one item without pagination tokens.
func (h *InstrumentalHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return response.ValidationError(c, "Missing search query", fiber.Map{"q": "required"})
	}

	result, err := h.service.Search(c.Context(), q, strings.TrimSpace(c.Query("channelId")))
	if err != nil {
		return writeError(c, err, compatSurface)
	}

	return response.OK(c, result)
}
