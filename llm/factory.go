// LLM Provider Factory - builder-first API for creating chat providers.
//
// Quick Start:
//
//	// Simplest: defaults, API key read from the environment
//	openai, err := llm.ProviderOpenAI.FromEnv()        // gpt-4o-mini
//	pplx, err := llm.ProviderPerplexity.FromEnv()      // sonar
//
//	// Full configuration
//	custom, err := llm.ProviderPerplexity.
//	    Model(llm.ModelPerplexitySonarPro).
//	    MaxTokens(2048).
//	    SystemPrompt("Answer briefly.").
//	    FromEnv()
//
// A missing key yields a KindConfiguration *Error whose ExitCode is
// specific to the provider, so callers can stop before the session starts.

package llm

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ProviderType represents supported chat providers.
type ProviderType int

const (
	// ProviderOpenAI is the OpenAI provider (GPT models). It is the default.
	ProviderOpenAI ProviderType = iota
	// ProviderPerplexity is the Perplexity provider (Sonar models).
	ProviderPerplexity
	// ProviderDeepSeek is the DeepSeek provider.
	ProviderDeepSeek
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
)

// DefaultProviderType is used when selection input matches nothing.
const DefaultProviderType = ProviderOpenAI

// ProviderTypes returns every supported provider in display order.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderOpenAI, ProviderPerplexity, ProviderDeepSeek, ProviderAnthropic, ProviderGemini}
}

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderPerplexity:
		return "perplexity"
	case ProviderDeepSeek:
		return "deepseek"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderGemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this provider's API key.
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderPerplexity:
		return "PERPLEXITY_API_KEY"
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return ModelOpenAIGPT4oMini
	case ProviderPerplexity:
		return ModelPerplexitySonar
	case ProviderDeepSeek:
		return ModelDeepSeekChat
	case ProviderAnthropic:
		return ModelAnthropicClaudeSonnet4
	case ProviderGemini:
		return ModelGeminiFlash25
	default:
		return ""
	}
}

// DefaultBaseURL returns the provider endpoint, or "" when the SDK
// picks its own.
func (p ProviderType) DefaultBaseURL() string {
	switch p {
	case ProviderOpenAI:
		return openaiBaseURL
	case ProviderPerplexity:
		return perplexityBaseURL
	case ProviderDeepSeek:
		return deepseekBaseURL
	default:
		return ""
	}
}

// ExitCode is the process exit status used when this provider's
// credential is missing at startup. Codes are distinct per provider.
func (p ProviderType) ExitCode() int {
	switch p {
	case ProviderOpenAI:
		return 2
	case ProviderPerplexity:
		return 3
	case ProviderDeepSeek:
		return 4
	case ProviderAnthropic:
		return 5
	case ProviderGemini:
		return 6
	default:
		return ExitCodeGeneric
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "perplexity", "pplx":
		return ProviderPerplexity, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// SelectProviderType resolves operator input at selection time.
// Unrecognised or empty input falls back to fallback; ok reports whether
// the input named a provider.
func SelectProviderType(input string, fallback ProviderType) (p ProviderType, ok bool) {
	p, err := ParseProviderType(input)
	if err != nil {
		return fallback, false
	}
	return p, true
}

// FromEnv creates a provider with defaults, reading API key from environment.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key (uses defaults for everything else).
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder is a builder for configuring chat providers.
type ProviderBuilder struct {
	providerType ProviderType
	cfg          Config
	systemPrompt *string
	temperature  *float32
}

// NewProviderBuilder creates a new builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{
		providerType: providerType,
	}
}

// Model sets the model to use.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.cfg.Model = model
	return b
}

// MaxTokens sets maximum tokens for responses.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.cfg.MaxTokens = tokens
	return b
}

// Temperature sets temperature (0.0 = deterministic, 1.0 = creative).
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// SystemPrompt replaces DefaultSystemPrompt. An empty string sends none.
func (b *ProviderBuilder) SystemPrompt(prompt string) *ProviderBuilder {
	b.systemPrompt = &prompt
	return b
}

// BaseURL overrides the provider endpoint.
func (b *ProviderBuilder) BaseURL(url string) *ProviderBuilder {
	b.cfg.BaseURL = url
	return b
}

// HTTPClient sets the HTTP client used by the underlying SDK.
func (b *ProviderBuilder) HTTPClient(client *http.Client) *ProviderBuilder {
	b.cfg.HTTPClient = client
	return b
}

// FromEnv builds the provider, reading API key from environment.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	return b.build(os.Getenv(b.providerType.EnvVar()))
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	cfg := b.cfg
	cfg.APIKey = strings.TrimSpace(apiKey)

	if cfg.Model == "" {
		cfg.Model = b.providerType.DefaultModel()
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	cfg.Temperature = 0.7 // default
	if b.temperature != nil {
		cfg.Temperature = *b.temperature
	}

	cfg.SystemPrompt = DefaultSystemPrompt
	if b.systemPrompt != nil {
		cfg.SystemPrompt = *b.systemPrompt
	}

	switch b.providerType {
	case ProviderOpenAI:
		return asProvider(NewOpenAIProvider(cfg))
	case ProviderPerplexity:
		return asProvider(NewPerplexityProvider(cfg))
	case ProviderDeepSeek:
		return asProvider(NewDeepSeekProvider(cfg))
	case ProviderAnthropic:
		return asProvider(NewAnthropicProvider(cfg))
	case ProviderGemini:
		return asProvider(NewGeminiProvider(cfg))
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}

// asProvider keeps a failed constructor from leaking a typed nil into the
// Provider interface.
func asProvider[T Provider](p T, err error) (Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
