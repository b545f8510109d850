// Package logger provides component-tagged slog output for diagnostics on
// stderr, kept separate from the chat transcript on stdout.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Component identifiers for color-coded logging
type Component string

const (
	ComponentCLI      Component = "CLI"
	ComponentSession  Component = "SESSION"
	ComponentProvider Component = "PROVIDER"
	ComponentHistory  Component = "HISTORY"
	ComponentMetrics  Component = "METRICS"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorGreen   = "\033[32m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorYellow  = "\033[33m"
	colorCyan    = "\033[36m"
)

var componentColors = map[Component]string{
	ComponentCLI:      colorBlue,
	ComponentSession:  colorGreen,
	ComponentProvider: colorMagenta,
	ComponentHistory:  colorYellow,
	ComponentMetrics:  colorCyan,
}

// ColorHandler writes "[COMPONENT] LEVEL message key=value" lines.
type ColorHandler struct {
	out       io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	component Component
	useColors bool
	attrs     []slog.Attr
	group     string
}

// NewColorHandler creates a new color-coded handler.
func NewColorHandler(out io.Writer, component Component, level slog.Leveler, useColors bool) *ColorHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ColorHandler{
		out:       out,
		mu:        &sync.Mutex{},
		level:     level,
		component: component,
		useColors: useColors,
	}
}

// Enabled reports whether the handler's level admits l.
func (h *ColorHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle processes a log record with color-coded output
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	color, reset := componentColors[h.component], colorReset
	if !h.useColors {
		color, reset = "", ""
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := fmt.Fprintf(h.out, "%s[%s]%s %s %s", color, h.component, reset, r.Level, r.Message); err != nil {
		return err
	}
	for _, a := range h.attrs {
		h.writeAttr("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(h.group, a)
		return true
	})
	_, err := fmt.Fprintln(h.out)
	return err
}

// writeAttr prints a with its key qualified by prefix. Group values are
// flattened into dotted keys.
func (h *ColorHandler) writeAttr(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := qualify(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(key, ga)
		}
		return
	}
	fmt.Fprintf(h.out, " %s=%v", key, a.Value)
}

func qualify(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// WithAttrs returns a new handler with the given attributes. Their keys are
// qualified by the groups opened so far.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = qualify(h.group, a.Key)
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup returns a new handler with the given group
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// Options configures a logger family.
type Options struct {
	Writer io.Writer
	Level  slog.Leveler
	Color  bool
}

// ColorEnabled reports whether the environment allows ANSI colour.
func ColorEnabled() bool {
	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
}

// Factory hands out component loggers that share one writer and level.
type Factory struct {
	opts Options
	mu   *sync.Mutex
}

// NewFactory creates a Factory. A nil Writer means stderr.
func NewFactory(opts Options) *Factory {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	return &Factory{opts: opts, mu: &sync.Mutex{}}
}

// For returns the logger for a component.
func (f *Factory) For(component Component) *slog.Logger {
	h := NewColorHandler(f.opts.Writer, component, f.opts.Level, f.opts.Color)
	h.mu = f.mu
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
