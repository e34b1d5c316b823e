package generator

import (
	"context"
	"fmt"
	"strings"

	"pet-doctor/internal/common/config"
	httpclient "pet-doctor/internal/common/http"
)

// OllamaClient runs prompts against a local Ollama model.
type OllamaClient struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *httpclient.Client
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaClient(cfg config.GeneratorConfig) *OllamaClient {
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}
	return &OllamaClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      httpclient.NewClient(httpclient.WithRetries(cfg.MaxRetries)),
	}
}

// Generate passes the supporting context as the system prompt.
func (c *OllamaClient) Generate(ctx context.Context, prompt, supporting string) (string, error) {
	var resp ollamaGenerateResponse
	err := c.client.PostJSON(ctx, c.baseURL+"/api/generate", ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: supporting,
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return resp.Response, nil
}

func (c *OllamaClient) Name() string { return "ollama:" + c.model }
