package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/culturo"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the DeepSeek OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.deepseek.com/v1"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "deepseek-chat"
)

// OpenAIProvider implements ChatModel against any OpenAI-compatible API.
// By default it talks to DeepSeek.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey     string       // API key sent as a bearer token
	Model      string       // Model to use (default: "deepseek-chat")
	BaseURL    string       // API base URL (default: DeepSeek)
	HTTPClient *http.Client // Custom HTTP client (optional)
}

// NewOpenAIProvider creates a new provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends one system + user message pair and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		status := statusCode(err)
		return "", &culturo.ProviderError{
			Message:    "chat completion failed",
			Cause:      err,
			StatusCode: status,
			Retryable:  isRetryable(status, err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &culturo.ProviderError{
			Message:   "no choices in model response",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// statusCode extracts the upstream HTTP status from a go-openai error.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isRetryable(status int, err error) bool {
	switch {
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	case status != 0:
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Transport failures carry no status.
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection refused", "connection reset", "temporary", "eof"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements ChatModel
var _ ChatModel = (*OpenAIProvider)(nil)
