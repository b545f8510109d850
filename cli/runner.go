// Command execution for CLI commands.
//
// Information Hiding:
// - Provider, history, renderer and metrics wiring hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/richinex/gptcmd/config"
	"github.com/richinex/gptcmd/history"
	"github.com/richinex/gptcmd/llm"
	"github.com/richinex/gptcmd/logger"
	"github.com/richinex/gptcmd/metrics"
	"github.com/richinex/gptcmd/render"
)

// Options holds CLI execution options.
type Options struct {
	Settings *config.Settings
	Logs     *logger.Factory

	// Nil streams mean the process's own.
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logs == nil {
		o.Logs = logger.NewFactory(logger.Options{Writer: o.Stderr, Level: o.Settings.LogLevel()})
	}
	return o
}

// Chat starts an interactive chat session and blocks until it ends.
func Chat(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()
	s := opts.Settings
	histLog := opts.Logs.For(logger.ComponentHistory)

	store, err := openHistory(s)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	hist := history.New(store, s.History.Limit)
	recall, err := hist.Load(ctx)
	if err != nil {
		histLog.Warn("failed to load history", "error", err)
	}
	histLog.Debug("history loaded", "entries", len(recall))

	term, err := NewTerminal(TerminalConfig{
		Stdin:        opts.Stdin,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		HistoryLimit: s.History.Limit,
		Recall:       recall,
		Complete:     hist.Complete,
	})
	if err != nil {
		return err
	}
	defer term.Close()

	recorder := metrics.New()
	session := NewSession(SessionConfig{
		Reader: term,
		Out:    opts.Stdout,
		Renderer: render.New(render.Options{
			NoColor: s.NoColor,
			Style:   s.Render.Style,
			Width:   s.Render.Width,
		}, opts.Logs.For(logger.ComponentCLI)),
		History: hist,
		Factory: func(p llm.ProviderType) (llm.Provider, error) {
			return createProvider(p, s, opts.Logs)
		},
		Observer:     recorder,
		Logger:       opts.Logs.For(logger.ComponentSession),
		Provider:     s.Provider,
		Fallback:     s.Fallback(),
		ClearOnStart: !s.NoColor,
	})

	runErr := session.Run(ctx)
	reportMetrics(opts, recorder)
	return runErr
}

func reportMetrics(opts Options, recorder *metrics.Recorder) {
	s := opts.Settings
	log := opts.Logs.For(logger.ComponentMetrics)

	if s.Metrics.File != "" {
		if err := recorder.WriteFile(s.Metrics.File); err != nil {
			log.Warn("metrics not written", "error", err)
		} else {
			log.Debug("metrics written", "file", s.Metrics.File)
		}
	}
	if s.Stats {
		fmt.Fprintf(opts.Stdout, "Session stats: %s\n", recorder.Summary())
	}
}

// ListProviders prints the provider table with credential status.
func ListProviders(w io.Writer, s *config.Settings) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PROVIDER", "MODEL", "API KEY", "SET", "EXIT CODE")

	fallback := s.Fallback()
	for _, p := range llm.ProviderTypes() {
		name := p.String()
		if p == fallback {
			name += " (default)"
		}
		set := "no"
		if _, err := config.APIKeyFor(p.String()); err == nil {
			set = "yes"
		}
		t.Row(name, s.ModelFor(p), p.EnvVar(), set, strconv.Itoa(p.ExitCode()))
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// HistoryQuery selects what ShowHistory does.
type HistoryQuery struct {
	// Clear deletes all stored entries instead of listing them.
	Clear bool
	// Prefix lists the distinct entries starting with it, with use counts.
	Prefix string
	// Info prints where history is kept and how much of it there is.
	Info bool
}

// ShowHistory prints stored input history, or empties it when q.Clear is set.
func ShowHistory(ctx context.Context, w io.Writer, s *config.Settings, q HistoryQuery) error {
	store, err := openHistory(s)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if q.Clear {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "History cleared.")
		return err
	}

	entries, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if q.Info {
		return describeHistory(ctx, w, store, entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No history yet.")
		return err
	}
	if q.Prefix != "" {
		idx := history.NewIndex(entries...)
		for _, entry := range idx.WithPrefix(q.Prefix, 0) {
			if _, err := fmt.Fprintf(w, "%5dx %s\n", idx.Count(entry), entry); err != nil {
				return err
			}
		}
		return nil
	}

	for i, entry := range entries {
		if _, err := fmt.Fprintf(w, "%5d  %s\n", i+1, entry); err != nil {
			return err
		}
	}
	return nil
}

func describeHistory(ctx context.Context, w io.Writer, store history.Store, entries []string) error {
	switch st := store.(type) {
	case *history.FileStore:
		fmt.Fprintf(w, "Backend:  file\nLocation: %s\n", st.Path())
	case *history.SqliteStore:
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Backend:  sqlite\nLocation: %s\nSessions: %d\n", st.Path(), len(sessions))
	default:
		fmt.Fprintln(w, "Backend:  memory (history disabled)")
	}
	_, err := fmt.Fprintf(w, "Entries:  %d (%d distinct)\n", len(entries), history.NewIndex(entries...).Len())
	return err
}

func openHistory(s *config.Settings) (history.Store, error) {
	return history.Open(history.Options{
		File:     s.History.File,
		DB:       s.History.DB,
		Limit:    s.History.Limit,
		Disabled: s.History.Disabled,
	})
}

func createProvider(p llm.ProviderType, s *config.Settings, logs *logger.Factory) (llm.Provider, error) {
	log := logs.For(logger.ComponentProvider)
	model := s.ModelFor(p)
	baseURL := s.BaseURLFor(p)

	log.Debug("building provider", "provider", p, "model", model, "base_url", baseURL)

	provider, err := llm.NewProviderBuilder(p).
		Model(model).
		BaseURL(baseURL).
		MaxTokens(s.LLM.MaxTokens).
		Temperature(float32(s.LLM.Temperature)).
		SystemPrompt(s.SystemPrompt).
		FromEnv()
	if err != nil {
		log.Debug("provider unavailable", "provider", p, "error", err)
		return nil, err
	}
	return provider, nil
}
