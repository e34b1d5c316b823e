package generator

import (
	"context"
	"fmt"
	"strings"

	"pet-doctor/internal/common/config"
	httpclient "pet-doctor/internal/common/http"
)

// GenAIClient talks to an internal GenAI gateway exposing
// POST /api/ai/generate.
type GenAIClient struct {
	baseURL     string
	maxTokens   int
	temperature float64
	client      *httpclient.Client
}

type genAIRequest struct {
	Prompt      string  `json:"prompt"`
	Context     string  `json:"context,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type genAIResponse struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

func NewGenAIClient(cfg config.GeneratorConfig) *GenAIClient {
	opts := []httpclient.Option{httpclient.WithRetries(cfg.MaxRetries)}
	if cfg.APIKey != "" {
		opts = append(opts, httpclient.WithHeader("Authorization", "Bearer "+cfg.APIKey))
	}
	return &GenAIClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      httpclient.NewClient(opts...),
	}
}

func (c *GenAIClient) Generate(ctx context.Context, prompt, supporting string) (string, error) {
	var resp genAIResponse
	err := c.client.PostJSON(ctx, c.baseURL+"/api/ai/generate", genAIRequest{
		Prompt:      prompt,
		Context:     supporting,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	return resp.Text, nil
}

func (c *GenAIClient) Name() string { return "genai" }
