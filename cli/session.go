package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/richinex/gptcmd/config"
	"github.com/richinex/gptcmd/history"
	"github.com/richinex/gptcmd/llm"
	"github.com/richinex/gptcmd/logger"
	"github.com/richinex/gptcmd/render"
)

// State is a session lifecycle phase.
type State int

const (
	// StateSelecting is choosing the active provider.
	StateSelecting State = iota
	// StateIdle is waiting for input.
	StateIdle
	// StateProcessing has a request in flight.
	StateProcessing
	// StateDone is terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Prompts and messages shown to the operator.
const (
	InputPrompt = "You: "
	Farewell    = "Goodbye!"
)

// ExitCodeInterrupted is the process status after a signal ends the session.
const ExitCodeInterrupted = 130

// ProviderFactory builds the provider chosen at selection time.
type ProviderFactory func(p llm.ProviderType) (llm.Provider, error)

// SessionConfig holds a Session's collaborators.
type SessionConfig struct {
	Reader   LineReader
	Out      io.Writer
	Renderer render.Renderer
	History  *history.History
	Factory  ProviderFactory
	Observer llm.Observer
	Logger   *slog.Logger

	// Provider preselects a provider by name; empty means ask.
	Provider string
	// Fallback is used when the selection matches no provider.
	Fallback llm.ProviderType
	// ClearOnStart erases the screen before the first prompt.
	ClearOnStart bool
}

// Session is the interactive read-respond loop. It holds exactly one
// active provider and performs one request at a time.
type Session struct {
	cfg SessionConfig
	log *slog.Logger

	mu           sync.Mutex
	state        State
	providerType llm.ProviderType
	client       *llm.Client

	finishOnce sync.Once
	finishErr  error
}

// NewSession creates a Session in StateSelecting.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Renderer == nil {
		cfg.Renderer = render.Plain{}
	}
	if cfg.History == nil {
		cfg.History = history.New(history.NewMemoryStore(0), 0)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Session{cfg: cfg, log: log, state: StateSelecting}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()

	if prev != state {
		s.log.Debug("state change", "from", prev, "to", state)
	}
}

// Provider returns the active provider, or nil before selection completes.
func (s *Session) Provider() llm.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	return s.client.Provider()
}

// Run drives the session until exit, end of input or cancellation.
//
// It returns nil for a normal exit (keyword, EOF, Ctrl-C at the prompt),
// a KindConfiguration *llm.Error when the selected provider cannot be
// built, and a KindInputTermination *llm.Error when ctx is cancelled.
// History is flushed exactly once on every path.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		if flushErr := s.finish(ctx); flushErr != nil {
			s.log.Warn("history not saved", "error", flushErr)
		}
	}()

	// A blocked read must notice cancellation too.
	stop := context.AfterFunc(ctx, func() { _ = s.cfg.Reader.Close() })
	defer stop()

	if err := s.selectProvider(ctx); err != nil {
		return err
	}

	if s.cfg.ClearOnStart {
		ClearScreen(s.cfg.Out)
	}
	provider := s.Provider()
	fmt.Fprintf(s.cfg.Out, "Chatting with %s (%s). Type 'exit' or 'quit' to leave, 'clear' to clear the screen.\n\n",
		provider.Name(), provider.Model())

	for {
		s.setState(StateIdle)

		line, err := s.cfg.Reader.ReadLine(InputPrompt)
		if ctx.Err() != nil {
			return s.interrupted(ctx)
		}
		if err != nil {
			return s.endOfInput(err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		s.cfg.History.Add(input)
		if err := s.cfg.Reader.AddHistory(input); err != nil {
			s.log.Debug("line not added to recall", "error", err)
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Fprintln(s.cfg.Out, Farewell)
			s.setState(StateDone)
			return nil
		case "clear":
			ClearScreen(s.cfg.Out)
			continue
		}

		s.process(ctx, input)
		if ctx.Err() != nil {
			return s.interrupted(ctx)
		}
	}
}

func (s *Session) selectProvider(ctx context.Context) error {
	s.setState(StateSelecting)

	input := s.cfg.Provider
	if input == "" {
		line, err := s.cfg.Reader.ReadLine(fmt.Sprintf("Select provider [%s] (default %s): ",
			strings.Join(config.SupportedProviders(), ", "), s.cfg.Fallback))
		if ctx.Err() != nil {
			return s.interrupted(ctx)
		}
		if err != nil {
			return s.endOfInput(err)
		}
		input = strings.TrimSpace(line)
	}

	p, ok := llm.SelectProviderType(input, s.cfg.Fallback)
	if !ok {
		if input != "" {
			fmt.Fprintf(s.cfg.Out, "Unknown provider %q; using %s.\n", input, p)
		} else {
			fmt.Fprintf(s.cfg.Out, "Using %s.\n", p)
		}
		s.log.Info("provider selection fell back", "input", input, "provider", p)
	}

	provider, err := s.cfg.Factory(p)
	if err != nil {
		s.setState(StateDone)
		return err
	}

	opts := []llm.ClientOption{llm.WithLogger(s.log)}
	if s.cfg.Observer != nil {
		opts = append(opts, llm.WithObserver(s.cfg.Observer))
	}

	s.mu.Lock()
	s.providerType = p
	s.client = llm.NewClient(provider, opts...)
	s.mu.Unlock()

	s.log.Debug("provider selected", "provider", provider.Name(), "model", provider.Model())
	return nil
}

func (s *Session) process(ctx context.Context, prompt string) {
	s.setState(StateProcessing)

	turn := s.client.Ask(ctx, prompt)
	if turn.Err != nil {
		if ctx.Err() != nil {
			return
		}
		s.reportError(turn.Err)
		return
	}

	if err := s.cfg.Renderer.Render(s.cfg.Out, turn.Response, turn.Elapsed); err != nil {
		s.reportError(err)
	}
}

func (s *Session) reportError(err error) {
	if llm.IsAuthentication(err) {
		fmt.Fprintf(s.cfg.Out, "Authentication failed for %s: check %s. (%v)\n",
			s.providerType, s.providerType.EnvVar(), err)
	} else {
		fmt.Fprintf(s.cfg.Out, "An error occurred: %v\n", err)
	}
	s.log.Warn("turn failed", "provider", s.providerType, "kind", llm.KindOf(err))
}

// endOfInput handles EOF and Ctrl-C at a prompt: a clean exit.
func (s *Session) endOfInput(err error) error {
	s.setState(StateDone)
	if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupt) {
		fmt.Fprintln(s.cfg.Out)
		fmt.Fprintln(s.cfg.Out, Farewell)
		return nil
	}
	return fmt.Errorf("failed to read input: %w", err)
}

// interrupted handles cancellation from a signal.
func (s *Session) interrupted(ctx context.Context) error {
	s.setState(StateDone)
	fmt.Fprintln(s.cfg.Out)
	fmt.Fprintln(s.cfg.Out, Farewell)
	return &llm.Error{
		Kind:     llm.KindInputTermination,
		Message:  "interrupted",
		ExitCode: ExitCodeInterrupted,
		Cause:    context.Cause(ctx),
	}
}

// finish flushes history once, whichever path ends the session.
func (s *Session) finish(ctx context.Context) error {
	s.finishOnce.Do(func() {
		s.setState(StateDone)
		// The session context may already be cancelled; saving must not be.
		s.finishErr = s.cfg.History.Flush(context.WithoutCancel(ctx))
	})
	return s.finishErr
}
