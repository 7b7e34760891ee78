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

	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/model"
)

// Remote task states reported by the Suno API
const (
	SunoStatusPending             = "PENDING"
	SunoStatusTextSuccess         = "TEXT_SUCCESS"
	SunoStatusFirstSuccess        = "FIRST_SUCCESS"
	SunoStatusSuccess             = "SUCCESS"
	SunoStatusCreateTaskFailed    = "CREATE_TASK_FAILED"
	SunoStatusGenerateAudioFailed = "GENERATE_AUDIO_FAILED"
	SunoStatusCallbackException   = "CALLBACK_EXCEPTION"
	SunoStatusSensitiveWordError  = "SENSITIVE_WORD_ERROR"
)

// MusicGenerator defines the interface for music generation operations
type MusicGenerator interface {
	GenerateMusic(ctx context.Context, req *GenerateMusicRequest) (string, error)
	GetMusicStatus(ctx context.Context, taskID string) (*MusicStatus, error)
}

// SunoClient implements MusicGenerator for Suno API
type SunoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// GenerateMusicRequest represents the request for music generation
type GenerateMusicRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style,omitempty"`
	Title        string `json:"title,omitempty"`
	CustomMode   bool   `json:"customMode"`
	Instrumental bool   `json:"instrumental"`
	Model        string `json:"model,omitempty"`
	CallBackURL  string `json:"callBackUrl"`
}

// sunoEnvelope is the wrapper every Suno API response uses
type sunoEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// SunoTrack is one generated song inside a task
type SunoTrack struct {
	ID             string  `json:"id"`
	AudioURL       string  `json:"audioUrl"`
	StreamAudioURL string  `json:"streamAudioUrl"`
	ImageURL       string  `json:"imageUrl"`
	Title          string  `json:"title"`
	Tags           string  `json:"tags"`
	Duration       float64 `json:"duration"`
}

// MusicStatus represents the state of a music generation task
type MusicStatus struct {
	TaskID       string `json:"taskId"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	Response     struct {
		SunoData []SunoTrack `json:"sunoData"`
	} `json:"response"`
}

// Tracks returns the produced tracks, possibly none
func (s *MusicStatus) Tracks() []SunoTrack {
	return s.Response.SunoData
}

// IsSuccess reports the terminal success state
func (s *MusicStatus) IsSuccess() bool {
	return s.Status == SunoStatusSuccess
}

// IsFailed reports any terminal failure state
func (s *MusicStatus) IsFailed() bool {
	switch s.Status {
	case SunoStatusCreateTaskFailed, SunoStatusGenerateAudioFailed,
		SunoStatusCallbackException, SunoStatusSensitiveWordError:
		return true
	}
	return false
}

// NewSunoClient creates a new Suno API client
func NewSunoClient(cfg *config.SunoConfig) *SunoClient {
	return &SunoClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// GenerateMusic submits a generation task and returns its task ID
func (c *SunoClient) GenerateMusic(ctx context.Context, req *GenerateMusicRequest) (string, error) {
	var result struct {
		TaskID string `json:"taskId"`
	}
	if err := c.post(ctx, "/api/v1/generate", req, &result); err != nil {
		return "", err
	}
	if result.TaskID == "" {
		return "", fmt.Errorf("%w: response carried no task id", model.ErrUpstreamRejected)
	}
	return result.TaskID, nil
}

// GetMusicStatus retrieves the status of a music generation task
func (c *SunoClient) GetMusicStatus(ctx context.Context, taskID string) (*MusicStatus, error) {
	endpoint := "/api/v1/generate/record-info?taskId=" + url.QueryEscape(taskID)
	var result MusicStatus
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	if result.TaskID == "" {
		result.TaskID = taskID
	}
	return &result, nil
}

// post sends a POST request with JSON body
func (c *SunoClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *SunoClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request, unwraps the envelope and parses data
func (c *SunoClient) doRequest(req *http.Request, result interface{}) error {
	if !c.IsConfigured() {
		return fmt.Errorf("%w: suno api key is not set", model.ErrConfig)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[Suno API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("%w: failed to send request: %v", model.ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("%w: failed to read response: %v", model.ErrUpstream, err)
	}

	log.Printf("[Suno API] ← %d %s %s — %s", resp.StatusCode, req.Method, req.URL.String(), string(respBody))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("%w: suno API error (status %d): %s", model.ErrUpstreamRejected, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: suno API error (status %d): %s", model.ErrUpstream, resp.StatusCode, string(respBody))
	}

	var env sunoEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		log.Printf("[Suno API] ✗ unmarshal error for %s %s: %v (body: %s)", req.Method, req.URL.String(), err, string(respBody))
		return fmt.Errorf("%w: failed to unmarshal response: %v", model.ErrUpstream, err)
	}
	if env.Code != http.StatusOK {
		return fmt.Errorf("%w: suno API code %d: %s", model.ErrUpstreamRejected, env.Code, env.Msg)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: suno API response has no data", model.ErrUpstream)
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("%w: failed to unmarshal data: %v", model.ErrUpstream, err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SunoClient) IsConfigured() bool {
	return c.apiKey != ""
}
