package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/model"
)

// LyricRewriter turns original lyrics into a parody about a topic
type LyricRewriter interface {
	Rewrite(ctx context.Context, req *model.ParodyRequest) (*model.ParodyResult, error)
}

// ParodyService rewrites lyrics through a text generation backend
type ParodyService struct {
	generator client.TextGenerator
}

// NewParodyService creates a new parody service
func NewParodyService(generator client.TextGenerator) *ParodyService {
	return &ParodyService{
		generator: generator,
	}
}

// Rewrite sends one instruction block and returns the generated text verbatim.
// Empty lyrics or topic fail before the generator is called.
func (s *ParodyService) Rewrite(ctx context.Context, req *model.ParodyRequest) (*model.ParodyResult, error) {
	if strings.TrimSpace(req.OriginalLyrics) == "" {
		return nil, fmt.Errorf("%w: original lyrics are required", model.ErrMissingInput)
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("%w: parody topic is required", model.ErrMissingInput)
	}

	text, err := s.generator.Generate(ctx, buildParodyPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("parody generation failed: %w", err)
	}

	return &model.ParodyResult{Text: text}, nil
}

func buildParodyPrompt(req *model.ParodyRequest) string {
	title := req.SongTitle
	if title == "" {
		title = "Unknown song"
	}
	artist := req.Artist
	if artist == "" {
		artist = "Unknown artist"
	}

	return fmt.Sprintf(`You are a comedy songwriter writing a parody of "%s" by %s.

Rewrite the lyrics below so the whole song is about: %s

Rules:
- Keep every section marker (for example [Verse 1], [Chorus]) exactly where it is.
- Keep the same number of lines in each section.
- Match the syllable count and stress pattern of each original line so the new words can be sung to the same melody.
- Keep the rhyme scheme of the original.
- Output ONLY the rewritten lyrics. No title, no introduction, no explanation, no notes.

Original lyrics:
%s`, title, artist, strings.TrimSpace(req.Topic), req.OriginalLyrics)
}
