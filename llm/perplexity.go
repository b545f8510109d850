// Perplexity Provider implementation using go-openai library.
//
// Information Hiding:
// - Uses OpenAI-compatible API at api.perplexity.ai (no /v1 prefix)
// - Sonar models answer with web-grounded content

package llm

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityProvider implements the Provider interface for Perplexity.
type PerplexityProvider struct {
	*chatCompletions
}

// NewPerplexityProvider creates a new Perplexity provider.
func NewPerplexityProvider(cfg Config) (*PerplexityProvider, error) {
	core, err := newChatCompletions(ProviderPerplexity, cfg)
	if err != nil {
		return nil, err
	}
	return &PerplexityProvider{chatCompletions: core}, nil
}

// Verify PerplexityProvider implements Provider
var _ Provider = (*PerplexityProvider)(nil)
