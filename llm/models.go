// Package llm provides shared configuration for chat providers.
package llm

import "net/http"

// Config holds everything a provider constructor needs.
// Zero values fall back to the provider type's defaults when built
// through ProviderBuilder; constructors only require APIKey.
type Config struct {
	// APIKey is the access credential. Constructors reject an empty key.
	APIKey string
	// Model is the model identifier sent with each request.
	Model string
	// BaseURL overrides the provider's default endpoint.
	BaseURL string
	// MaxTokens caps the reply length (0 = provider default).
	MaxTokens uint32
	// Temperature is the sampling temperature.
	Temperature float32
	// SystemPrompt precedes every user prompt. Empty sends none.
	SystemPrompt string
	// HTTPClient replaces the SDK's default client (tests, proxies).
	HTTPClient *http.Client
}

// OpenAI model identifiers
const (
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	ModelOpenAIGPT4o     = "gpt-4o"
)

// Perplexity model identifiers
const (
	ModelPerplexitySonar    = "sonar"
	ModelPerplexitySonarPro = "sonar-pro"
)

// DeepSeek model identifiers
const (
	ModelDeepSeekChat     = "deepseek-chat"
	ModelDeepSeekReasoner = "deepseek-reasoner"
)

// Anthropic model identifiers
const (
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
)

// Gemini model identifiers
const (
	ModelGeminiFlash25 = "gemini-2.5-flash"
)
