package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/model"
)

const geniusUserAgent = "makeaparody/1.0"

// LyricsSource resolves a song to a canonical page and scrapes its lyric blocks
type LyricsSource interface {
	Search(ctx context.Context, query string) ([]GeniusHit, error)
	FetchLyricBlocks(ctx context.Context, pageURL string) ([]string, error)
}

// GeniusClient talks to the Genius search API and scrapes song pages
type GeniusClient struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	limiter     *rate.Limiter
}

// GeniusHit is one search result
type GeniusHit struct {
	FullTitle string `json:"full_title"`
	URL       string `json:"url"`
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Type   string    `json:"type"`
			Result GeniusHit `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// NewGeniusClient creates a new Genius client
func NewGeniusClient(cfg *config.GeniusConfig) *GeniusClient {
	return &GeniusClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Search queries the Genius search index, hits are returned in ranking order
func (c *GeniusClient) Search(ctx context.Context, query string) ([]GeniusHit, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%w: genius access token is not set", model.ErrConfig)
	}

	params := url.Values{}
	params.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp geniusSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal genius search: %v", model.ErrUpstream, err)
	}

	hits := make([]GeniusHit, 0, len(resp.Response.Hits))
	for _, h := range resp.Response.Hits {
		hits = append(hits, h.Result)
	}
	return hits, nil
}

// FetchLyricBlocks downloads a song page and returns the text of every lyric
// container in document order, with <br> turned into newlines
func (c *GeniusClient) FetchLyricBlocks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse lyrics page: %v", model.ErrUpstream, err)
	}

	var blocks []string
	doc.Find(`[data-lyrics-container="true"]`).Each(func(i int, s *goquery.Selection) {
		s.Find(`[data-exclude-from-selection="true"]`).Remove()
		s.Find("br").ReplaceWithHtml("\n")
		blocks = append(blocks, s.Text())
	})
	return blocks, nil
}

// do executes a paced request and returns the body of a 2xx response
func (c *GeniusClient) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", geniusUserAgent)

	log.Printf("[Genius] → %s %s", req.Method, req.URL.Redacted())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Genius] ✗ %s %s — request failed: %v", req.Method, req.URL.Redacted(), err)
		return nil, fmt.Errorf("%w: genius request failed: %v", model.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read genius response: %v", model.ErrUpstream, err)
	}

	log.Printf("[Genius] ← %d %s %s (%d bytes)", resp.StatusCode, req.Method, req.URL.Redacted(), len(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: genius returned status %d", model.ErrUpstream, resp.StatusCode)
	}
	return body, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *GeniusClient) IsConfigured() bool {
	return c.accessToken != ""
}
