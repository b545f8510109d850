// LLMClient - Timed wrapper around providers.

package llm

import (
	"context"
	"log/slog"
	"time"
)

// Turn is one prompt/response exchange. Exactly one of Response and Err
// is meaningful. Turns are not retained after display.
type Turn struct {
	Prompt   string
	Response string
	Elapsed  time.Duration
	Err      error
}

// Observer is notified after every provider call.
type Observer interface {
	ObserveTurn(provider string, elapsed time.Duration, err error)
}

// Client wraps a Provider, measuring wall-clock time around each call.
// The measurement is for display only; no deadline is applied.
type Client struct {
	provider Provider
	observer Observer
	log      *slog.Logger
	now      func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithObserver registers an observer for completed turns.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends one prompt to the provider and returns the timed turn.
func (c *Client) Ask(ctx context.Context, prompt string) Turn {
	c.log.Debug("sending prompt", "provider", c.provider.Name(), "model", c.provider.Model(), "prompt_len", len(prompt))

	start := c.now()
	response, err := c.provider.Respond(ctx, prompt)
	elapsed := c.now().Sub(start)

	if err != nil {
		c.log.Debug("provider call failed", "provider", c.provider.Name(), "kind", KindOf(err), "elapsed", elapsed)
	} else {
		c.log.Debug("provider call succeeded", "provider", c.provider.Name(), "response_len", len(response), "elapsed", elapsed)
	}

	if c.observer != nil {
		c.observer.ObserveTurn(c.provider.Name(), elapsed, err)
	}

	return Turn{
		Prompt:   prompt,
		Response: response,
		Elapsed:  elapsed,
		Err:      err,
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
