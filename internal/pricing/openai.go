package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/menumetrics/menupricer/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// ChatRequest is one outbound chat-completion request. Temperature and
// MaxTokens vary per cascade tier; the model and timeout are fixed per client.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer issues a single synchronous chat completion and returns the raw
// response text. Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, Usage, error)
	Model() string
}

// OpenAIClient is the production Completer backed by the OpenAI API,
// configured for JSON-only output.
type OpenAIClient struct {
	client *openai.Client
	cfg    config.OpenAIConfig
	logger *slog.Logger
}

// NewOpenAIClient creates a Completer for the configured model.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.cfg.Model
}

// Complete issues one chat completion with a JSON object response format.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, Usage, error) {
	apiCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("openai api call failed: %w", err)
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	if len(resp.Choices) == 0 {
		return "", usage, fmt.Errorf("no completion choices returned from model %s", c.cfg.Model)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", usage, fmt.Errorf("empty response from model %s (finish_reason: %s)", c.cfg.Model, resp.Choices[0].FinishReason)
	}

	c.logger.Debug("chat completion finished",
		"model", c.cfg.Model,
		"total_tokens", usage.TotalTokens)

	return content, usage, nil
}
