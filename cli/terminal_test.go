package cli

import (
	"bytes"
	"testing"
)

func TestCompleter(t *testing.T) {
	c := &completer{
		source: func(prefix string, limit int) []string {
			if prefix == "ex" {
				return []string{"exit", "explain defer"}
			}
			return nil
		},
		limit: maxCompletions,
	}

	candidates, length := c.Do([]rune("ex"), 2)
	if length != 2 {
		t.Errorf("expected length 2, got %d", length)
	}
	var got []string
	for _, r := range candidates {
		got = append(got, string(r))
	}
	if len(got) != 2 || got[0] != "it" || got[1] != "plain defer" {
		t.Errorf("unexpected candidates %q", got)
	}

	if candidates, _ := c.Do([]rune("CL"), 2); len(candidates) != 1 || string(candidates[0]) != "ear" {
		t.Errorf("expected case-insensitive keyword completion, got %q", candidates)
	}
	if candidates, _ := c.Do([]rune(""), 0); candidates != nil {
		t.Errorf("expected no candidates for empty line, got %q", candidates)
	}
}

func TestClearScreen(t *testing.T) {
	var buf bytes.Buffer
	ClearScreen(&buf)
	if buf.String() != clearSequence {
		t.Errorf("unexpected clear sequence %q", buf.String())
	}
}
