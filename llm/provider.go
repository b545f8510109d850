// Package llm provides chat provider abstractions.
//
// LLM Provider interface - the abstract interface for chat-completion backends.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Mapping of provider-specific failures onto the Error taxonomy

package llm

import (
	"context"
)

// Provider defines the abstract interface for chat providers.
// A constructed Provider is always call-ready: constructors reject a
// missing credential, so Respond never sees an empty key.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the model requests are sent to.
	Model() string

	// Respond sends a single user prompt, preceded by the configured
	// system prompt, and returns the complete reply text.
	// No earlier turn is sent along. Respond does not retry.
	Respond(ctx context.Context, prompt string) (string, error)
}
