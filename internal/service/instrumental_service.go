package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/youtube/v3"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/model"
)

// InstrumentalBiasTerm is appended to every backing-track search.
const InstrumentalBiasTerm = "instrumental"

// InstrumentalFinder returns the single best backing-track match, or nil
type InstrumentalFinder interface {
	FindInstrumental(ctx context.Context, query model.SongQuery) (*model.InstrumentalResult, error)
}

// InstrumentalService biases video searches toward backing tracks
type InstrumentalService struct {
	searcher client.VideoSearcher
}

// NewInstrumentalService creates a new instrumental finder
func NewInstrumentalService(searcher client.VideoSearcher) *InstrumentalService {
	return &InstrumentalService{
		searcher: searcher,
	}
}

// FindInstrumental looks up "<title> [artist] instrumental". No match is a
// nil result with a nil error.
func (s *InstrumentalService) FindInstrumental(ctx context.Context, query model.SongQuery) (*model.InstrumentalResult, error) {
	query = model.NewSongQuery(query.Title, query.Artist)
	if query.Title == "" {
		return nil, fmt.Errorf("%w: song title is required", model.ErrMissingInput)
	}

	resp, err := s.Search(ctx, query.SearchText(), "")
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 || resp.Items[0].Id == nil || resp.Items[0].Snippet == nil {
		return nil, nil
	}

	item := resp.Items[0]
	published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	return &model.InstrumentalResult{
		VideoID:      item.Id.VideoId,
		Title:        item.Snippet.Title,
		ChannelTitle: item.Snippet.ChannelTitle,
		PublishedAt:  published,
	}, nil
}

// Search runs the biased query and returns the provider payload trimmed to
// at most one item with pagination tokens removed
func (s *InstrumentalService) Search(ctx context.Context, text, channelID string) (*youtube.SearchListResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", model.ErrMissingInput)
	}

	resp, err := s.searcher.SearchVideos(ctx, client.VideoSearchParams{
		Query:      BiasedQuery(text),
		ChannelID:  channelID,
		MaxResults: 1,
		Order:      "relevance",
		SafeSearch: "moderate",
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Items) > 1 {
		resp.Items = resp.Items[:1]
	}
	resp.NextPageToken = ""
	resp.PrevPageToken = ""
	return resp, nil
}

// BiasedQuery appends the bias term to a search text.
func BiasedQuery(text string) string {
	return strings.TrimSpace(text) + " " + InstrumentalBiasTerm
}
