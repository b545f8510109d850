// Line input for the interactive session.
//
// Information Hiding:
// - Line editing and recall hidden behind LineReader
// - Terminal escape sequences kept here

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrInterrupt is returned by ReadLine when the operator presses Ctrl-C
// at the prompt.
var ErrInterrupt = errors.New("interrupted")

// LineReader reads operator input one line at a time.
type LineReader interface {
	// ReadLine shows prompt and returns the entered line without its
	// newline. It returns io.EOF at end of input and ErrInterrupt on Ctrl-C.
	ReadLine(prompt string) (string, error)

	// AddHistory makes line available for recall.
	AddHistory(line string) error

	// Close releases the terminal; a blocked ReadLine returns io.EOF.
	Close() error
}

// Terminal is a LineReader backed by readline.
type Terminal struct {
	rl *readline.Instance
}

// TerminalConfig configures a Terminal. Nil streams mean the process's own;
// a non-nil Stdin is read without line editing redraws.
type TerminalConfig struct {
	Stdin        io.ReadCloser
	Stdout       io.Writer
	Stderr       io.Writer
	HistoryLimit int
	// Recall seeds the up-arrow list, oldest first.
	Recall []string
	// Complete, when set, supplies Tab completions for the typed prefix.
	Complete func(prefix string, limit int) []string
}

// NewTerminal creates a readline-backed Terminal. Recall entries are kept
// in memory only; persistence is the history package's job.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	rlCfg := &readline.Config{
		HistoryLimit:           cfg.HistoryLimit,
		DisableAutoSaveHistory: true,
		Stdin:                  cfg.Stdin,
		Stdout:                 cfg.Stdout,
		Stderr:                 cfg.Stderr,
	}
	if cfg.Stdin != nil {
		// Supplied input is a pipe or script: no raw mode, no redraws.
		rlCfg.FuncIsTerminal = func() bool { return false }
		rlCfg.FuncMakeRaw = func() error { return nil }
		rlCfg.FuncExitRaw = func() error { return nil }
	}
	if cfg.Complete != nil {
		rlCfg.AutoComplete = &completer{source: cfg.Complete, limit: maxCompletions}
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t := &Terminal{rl: rl}
	for _, line := range cfg.Recall {
		if err := t.AddHistory(line); err != nil {
			rl.Close()
			return nil, fmt.Errorf("failed to seed recall: %w", err)
		}
	}
	return t, nil
}

// ReadLine implements LineReader.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

// AddHistory implements LineReader.
func (t *Terminal) AddHistory(line string) error {
	return t.rl.SaveHistory(line)
}

// Close implements LineReader.
func (t *Terminal) Close() error {
	return t.rl.Close()
}

const maxCompletions = 20

var keywords = []string{"clear", "exit", "quit"}

// completer offers session keywords and earlier inputs that extend the
// text left of the cursor.
type completer struct {
	source func(prefix string, limit int) []string
	limit  int
}

// Do implements readline.AutoCompleter.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.TrimSpace(prefix) == "" {
		return nil, 0
	}

	seen := make(map[string]bool)
	var candidates [][]rune
	add := func(full, typed string) {
		if seen[full] || len(full) <= len(typed) {
			return
		}
		seen[full] = true
		candidates = append(candidates, []rune(full[len(typed):]))
	}

	lower := strings.ToLower(prefix)
	for _, kw := range keywords {
		if strings.HasPrefix(kw, lower) {
			add(kw, lower)
		}
	}
	for _, entry := range c.source(prefix, c.limit) {
		add(entry, prefix)
	}
	return candidates, pos
}

// clearSequence moves the cursor home and erases the display.
const clearSequence = "\033[H\033[2J"

// ClearScreen erases the terminal behind w.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, clearSequence)
}

var _ LineReader = (*Terminal)(nil)
