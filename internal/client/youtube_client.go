package client

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/model"
)

// VideoSearchParams are the knobs the finder sets on every search
type VideoSearchParams struct {
	Query      string
	ChannelID  string
	MaxResults int64
	Order      string
	SafeSearch string
}

// VideoSearcher runs a single-page video search
type VideoSearcher interface {
	SearchVideos(ctx context.Context, p VideoSearchParams) (*youtube.SearchListResponse, error)
}

// YouTubeClient wraps the YouTube Data API v3 search endpoint
type YouTubeClient struct {
	service *youtube.Service
}

// NewYouTubeClient creates a new YouTube client. A missing API key is not an
// error here; searches fail with a configuration error instead.
func NewYouTubeClient(ctx context.Context, cfg *config.YouTubeConfig) (*YouTubeClient, error) {
	if cfg.APIKey == "" {
		return &YouTubeClient{}, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: couldn't create service: %w", err)
	}
	return &YouTubeClient{service: service}, nil
}

// SearchVideos performs one search.list call and never follows page tokens
func (c *YouTubeClient) SearchVideos(ctx context.Context, p VideoSearchParams) (*youtube.SearchListResponse, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%w: youtube api key is not set", model.ErrConfig)
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(p.Query).
		Type("video").
		MaxResults(p.MaxResults).
		Order(p.Order).
		SafeSearch(p.SafeSearch).
		Context(ctx)
	if p.ChannelID != "" {
		call = call.ChannelId(p.ChannelID)
	}

	log.Printf("[YouTube] → search q=%q maxResults=%d", p.Query, p.MaxResults)

	resp, err := call.Do()
	if err != nil {
		log.Printf("[YouTube] ✗ search q=%q — %v", p.Query, err)
		return nil, fmt.Errorf("%w: youtube search failed: %v", model.ErrUpstream, err)
	}

	log.Printf("[YouTube] ← search q=%q — %d items", p.Query, len(resp.Items))
	return resp, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *YouTubeClient) IsConfigured() bool {
	return c.service != nil
}
