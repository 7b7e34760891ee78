package client

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/model"
)

// TextGenerator produces a single completion for one instruction block
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GroqClient handles communication with Groq's OpenAI-compatible API
type GroqClient struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
}

// NewGroqClient creates a new Groq API client
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{
		Timeout: 90 * time.Second,
	}

	return &GroqClient{
		client:    openai.NewClientWithConfig(oc),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Generate sends the prompt as a single user message and returns the first
// choice untouched
func (c *GroqClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("%w: groq api key is not set", model.ErrConfig)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.8,
	}

	log.Printf("[Groq] → chat completion model=%s prompt=%d chars", c.model, len(prompt))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("[Groq] ✗ chat completion failed: %v", err)
		return "", fmt.Errorf("%w: text generation failed: %v", model.ErrUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", model.ErrUpstream)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty completion", model.ErrUpstream)
	}

	log.Printf("[Groq] ← chat completion finish=%s tokens=%d", resp.Choices[0].FinishReason, resp.Usage.TotalTokens)
	return content, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *GroqClient) IsConfigured() bool {
	return c.apiKey != ""
}
