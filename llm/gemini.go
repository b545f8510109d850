// Google Gemini Provider implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Request/response format for Gemini API
// - System instruction handling via config

package llm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client       *genai.Client
	model        string
	maxTokens    int32
	temperature  float32
	systemPrompt string
}

// NewGeminiProvider creates a new Gemini provider.
// Client initialization errors are returned immediately so a broken
// provider never reaches the session loop.
func NewGeminiProvider(cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(ProviderGemini)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, &Error{
			Provider: ProviderGemini.String(),
			Kind:     KindConfiguration,
			Message:  "failed to initialize Gemini client",
			ExitCode: ExitCodeGeneric,
			Cause:    err,
		}
	}

	model := cfg.Model
	if model == "" {
		model = ProviderGemini.DefaultModel()
	}

	return &GeminiProvider{
		client:       client,
		model:        model,
		maxTokens:    int32(cfg.MaxTokens),
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return ProviderGemini.String()
}

// Model returns the current model.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Respond sends a single-turn GenerateContent request.
func (p *GeminiProvider) Respond(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.temperature),
		MaxOutputTokens: p.maxTokens,
	}

	if p.systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(p.systemPrompt, genai.RoleUser)
	}

	response, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", statusError(p.Name(), apiErr.Code, strings.TrimSpace(apiErr.Message), err)
		}
		return "", transportError(p.Name(), err)
	}

	content := response.Text()
	if content == "" {
		return "", emptyResponse(p.Name())
	}
	return content, nil
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
