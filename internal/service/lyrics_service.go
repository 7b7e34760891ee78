package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/model"
)

// LyricsFetcher resolves a song to normalized lyrics
type LyricsFetcher interface {
	FetchLyrics(ctx context.Context, query model.SongQuery) (*model.LyricsResult, error)
}

// LyricsService locates a song on Genius and scrapes its lyrics
type LyricsService struct {
	source client.LyricsSource
}

// NewLyricsService creates a new lyrics service
func NewLyricsService(source client.LyricsSource) *LyricsService {
	return &LyricsService{
		source: source,
	}
}

// FetchLyrics searches for the song and returns the top hit's lyrics.
// An empty title fails before any request is made.
func (s *LyricsService) FetchLyrics(ctx context.Context, query model.SongQuery) (*model.LyricsResult, error) {
	query = model.NewSongQuery(query.Title, query.Artist)
	if query.Title == "" {
		return nil, fmt.Errorf("%w: song title is required", model.ErrMissingInput)
	}

	hits, err := s.source.Search(ctx, query.SearchText())
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: no lyrics found for %q", model.ErrNotFound, query.SearchText())
	}

	top := hits[0]
	blocks, err := s.source.FetchLyricBlocks(ctx, top.URL)
	if err != nil {
		return nil, err
	}

	var raw strings.Builder
	for _, b := range blocks {
		raw.WriteString(b)
		raw.WriteString("\n")
	}

	return &model.LyricsResult{
		Title:     top.FullTitle,
		SourceURL: top.URL,
		Text:      NormalizeLyrics(raw.String()),
	}, nil
}
