// OpenAI Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for OpenAI Chat Completions API
// - Shared by every OpenAI-compatible backend (Perplexity, DeepSeek)

package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openaiBaseURL = "https://api.openai.com/v1"

// chatCompletions is the go-openai core shared by the OpenAI-compatible
// providers. Variants differ only in name, endpoint and model.
type chatCompletions struct {
	client       *openai.Client
	name         string
	model        string
	maxTokens    int
	temperature  float32
	systemPrompt string
}

func newChatCompletions(p ProviderType, cfg Config) (*chatCompletions, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(p)
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = p.DefaultBaseURL()
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = p.DefaultModel()
	}

	return &chatCompletions{
		client:       openai.NewClientWithConfig(config),
		name:         p.String(),
		model:        model,
		maxTokens:    int(cfg.MaxTokens),
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
	}, nil
}

// Name returns the provider name.
func (c *chatCompletions) Name() string {
	return c.name
}

// Model returns the current model.
func (c *chatCompletions) Model() string {
	return c.model
}

// Respond sends the system prompt and the user prompt and returns the
// first choice's content.
func (c *chatCompletions) Respond(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.messages(prompt),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", c.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", emptyResponse(c.name)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", emptyResponse(c.name)
	}
	return content, nil
}

func (c *chatCompletions) messages(prompt string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if c.systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemPrompt,
		})
	}
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

// mapError converts go-openai failures into *Error.
func (c *chatCompletions) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(c.name, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(c.name, reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), err)
	}
	return transportError(c.name, err)
}

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	*chatCompletions
}

// NewOpenAIProvider creates a new OpenAI provider.
// Returns a KindConfiguration error if cfg.APIKey is empty.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	core, err := newChatCompletions(ProviderOpenAI, cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{chatCompletions: core}, nil
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
