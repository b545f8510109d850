// Package render displays responses in the terminal.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer shows a response together with the time it took.
type Renderer interface {
	Render(w io.Writer, response string, elapsed time.Duration) error
}

// FormatElapsed formats the elapsed-time line shown after every response.
func FormatElapsed(elapsed time.Duration) string {
	return fmt.Sprintf("Response time: %.2fs", elapsed.Seconds())
}

// Plain writes the raw response text followed by the timing line.
type Plain struct{}

// Render implements Renderer.
func (Plain) Render(w io.Writer, response string, elapsed time.Duration) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", strings.TrimRight(response, "\n"), FormatElapsed(elapsed))
	return err
}

// Markdown renders responses as styled Markdown inside a rounded panel.
type Markdown struct {
	term  *glamour.TermRenderer
	panel lipgloss.Style
	faint lipgloss.Style
}

// NewMarkdown creates a Markdown renderer with a glamour style name
// ("dark", "light", "notty", ...) and a word-wrap width.
func NewMarkdown(style string, width int) (*Markdown, error) {
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return &Markdown{
		term: term,
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Background(lipgloss.Color("0")).
			Padding(0, 1),
		faint: lipgloss.NewStyle().Faint(true),
	}, nil
}

// Render implements Renderer.
func (m *Markdown) Render(w io.Writer, response string, elapsed time.Duration) error {
	out, err := m.term.Render(response)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	body := m.panel.Render(strings.Trim(out, "\n"))
	_, err = fmt.Fprintf(w, "%s\n%s\n", body, m.faint.Render(FormatElapsed(elapsed)))
	return err
}

// Options selects a Renderer.
type Options struct {
	NoColor bool
	Style   string
	Width   int
}

// New returns Plain when colour is off, otherwise Markdown. A Markdown
// setup failure is logged and Plain is used instead.
func New(opts Options, log *slog.Logger) Renderer {
	if opts.NoColor {
		return Plain{}
	}

	md, err := NewMarkdown(opts.Style, opts.Width)
	if err != nil {
		log.Warn("falling back to plain output", "error", err)
		return Plain{}
	}
	return md
}
