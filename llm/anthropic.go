// Anthropic Provider implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - SDK retry loop disabled; the session reports failures as-is

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMaxTokens is used when no cap is configured; the Messages API
// requires max_tokens on every request.
const anthropicMaxTokens = 4096

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client       anthropic.Client
	model        string
	maxTokens    int64
	temperature  float64
	systemPrompt string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(ProviderAnthropic)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = ProviderAnthropic.DefaultModel()
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = anthropicMaxTokens
	}

	return &AnthropicProvider{
		client:       anthropic.NewClient(opts...),
		model:        model,
		maxTokens:    maxTokens,
		temperature:  float64(cfg.Temperature),
		systemPrompt: cfg.SystemPrompt,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic.String()
}

// Model returns the current model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Respond sends a single-turn Messages API request.
func (p *AnthropicProvider) Respond(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(p.temperature),
	}

	if p.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: p.systemPrompt},
		}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", statusError(p.Name(), apiErr.StatusCode, anthropicErrorMessage(apiErr), err)
		}
		return "", transportError(p.Name(), err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(variant.Text)
		}
	}

	if strings.TrimSpace(content.String()) == "" {
		return "", emptyResponse(p.Name())
	}
	return content.String(), nil
}

// anthropicErrorMessage extracts error.message from an API error body.
func anthropicErrorMessage(apiErr *anthropic.Error) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(apiErr.RawJSON()), &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Error.Message)
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
