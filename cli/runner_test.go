package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/richinex/gptcmd/config"
	"github.com/richinex/gptcmd/history"
	"github.com/richinex/gptcmd/llm"
	"github.com/richinex/gptcmd/logger"
	"github.com/richinex/gptcmd/metrics"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	for _, p := range llm.ProviderTypes() {
		name := strings.ToUpper(p.String())
		t.Setenv(p.EnvVar(), "")
		t.Setenv(name+"_MODEL", "")
		t.Setenv(name+"_BASE_URL", "")
	}
	return &config.Settings{
		DefaultProvider: "openai",
		SystemPrompt:    "Be brief.",
		LLM:             config.LLMConfig{MaxTokens: 256, Temperature: 0.2},
		Models:          map[string]string{},
		BaseURLs:        map[string]string{},
		History: config.HistoryConfig{
			File:  filepath.Join(t.TempDir(), ".gptcmd_history"),
			Limit: 100,
		},
		Render: config.RenderConfig{Style: "dark", Width: 80},
		Log:    config.LogConfig{Level: "warn"},
	}
}

func quietLogs() *logger.Factory {
	return logger.NewFactory(logger.Options{Writer: io.Discard, Level: slog.LevelError})
}

// chatEndpoint answers chat completions with reply and counts requests.
func chatEndpoint(t *testing.T, reply string) (*httptest.Server, *int32, *atomic.Value) {
	t.Helper()
	var calls int32
	model := &atomic.Value{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		model.Store(req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"`+reply+`"},"finish_reason":"stop"}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, model
}

// promptEndpoint answers chat completions with reply and records the user
// message of each request.
func promptEndpoint(t *testing.T, reply string) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		for _, m := range req.Messages {
			if m.Role == "user" {
				prompts = append(prompts, m.Content)
			}
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"`+reply+`"},"finish_reason":"stop"}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string{}, prompts...)
	}
}

func TestChatEndToEnd(t *testing.T) {
	for _, noColor := range []bool{false, true} {
		t.Run(fmt.Sprintf("no_color=%v", noColor), func(t *testing.T) {
			s := testSettings(t)
			s.NoColor = noColor
			srv, prompts := promptEndpoint(t, "pong")
			s.BaseURLs["perplexity"] = srv.URL
			t.Setenv("PERPLEXITY_API_KEY", "pplx-test")

			var out bytes.Buffer
			err := Chat(context.Background(), Options{
				Settings: s,
				Logs:     quietLogs(),
				Stdin:    io.NopCloser(strings.NewReader("perplexity\nhi\nexit\n")),
				Stdout:   &out,
				Stderr:   io.Discard,
			})
			if err != nil {
				t.Fatalf("Chat failed: %v", err)
			}

			if got := strings.Contains(out.String(), clearSequence); got == noColor {
				t.Errorf("clear sequence present=%v with no_color=%v", got, noColor)
			}
			for _, want := range []string{"Chatting with perplexity", "pong", "Response time:", Farewell} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected %q in output:\n%s", want, out.String())
				}
			}
			if got := prompts(); len(got) != 1 || got[0] != "hi" {
				t.Errorf("expected one request for %q, got %v", "hi", got)
			}

			entries, err := history.NewFileStore(s.History.File, 100).Load(context.Background())
			if err != nil {
				t.Fatalf("load history: %v", err)
			}
			if strings.Join(entries, ",") != "hi,exit" {
				t.Errorf("expected history [hi exit], got %v", entries)
			}
		})
	}
}

func TestChatRecallsStoredHistory(t *testing.T) {
	s := testSettings(t)
	s.NoColor = true
	srv, prompts := promptEndpoint(t, "pong")
	s.BaseURLs["openai"] = srv.URL
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if err := history.NewFileStore(s.History.File, 100).Save(context.Background(), []string{"explain channels"}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	// Up arrow, then Enter, resubmits the most recent stored line.
	err := Chat(context.Background(), Options{
		Settings: s,
		Logs:     quietLogs(),
		Stdin:    io.NopCloser(strings.NewReader("openai\n\x1b[A\nquit\n")),
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if got := prompts(); len(got) != 1 || got[0] != "explain channels" {
		t.Errorf("expected the recalled line to be sent, got %v", got)
	}
}

func TestChatContinuesWhenHistoryUnreadable(t *testing.T) {
	s := testSettings(t)
	s.NoColor = true
	s.History.File = t.TempDir()
	srv, prompts := promptEndpoint(t, "pong")
	s.BaseURLs["openai"] = srv.URL
	t.Setenv("OPENAI_API_KEY", "sk-test")

	var out, logs bytes.Buffer
	err := Chat(context.Background(), Options{
		Settings: s,
		Logs:     logger.NewFactory(logger.Options{Writer: &logs, Level: slog.LevelWarn}),
		Stdin:    io.NopCloser(strings.NewReader("openai\nhi\nexit\n")),
		Stdout:   &out,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if !strings.Contains(out.String(), "pong") {
		t.Errorf("expected the session to answer, got:\n%s", out.String())
	}
	if got := prompts(); len(got) != 1 {
		t.Errorf("expected one request, got %v", got)
	}
	if !strings.Contains(logs.String(), "failed to load history") {
		t.Errorf("expected load failure to be logged, got %q", logs.String())
	}
}

func TestCreateProviderMissingCredential(t *testing.T) {
	s := testSettings(t)

	for _, p := range llm.ProviderTypes() {
		_, err := createProvider(p, s, quietLogs())
		if !llm.IsConfiguration(err) {
			t.Errorf("%s: expected configuration error, got %v", p, err)
			continue
		}
		if llm.ExitCodeOf(err) != p.ExitCode() {
			t.Errorf("%s: expected exit code %d, got %d", p, p.ExitCode(), llm.ExitCodeOf(err))
		}
	}
}

func TestCreateProviderUsesSettings(t *testing.T) {
	s := testSettings(t)
	s.Models["deepseek"] = llm.ModelDeepSeekReasoner
	t.Setenv("DEEPSEEK_API_KEY", "ds-test")

	provider, err := createProvider(llm.ProviderDeepSeek, s, quietLogs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "deepseek" || provider.Model() != llm.ModelDeepSeekReasoner {
		t.Errorf("unexpected provider %s/%s", provider.Name(), provider.Model())
	}
}

func TestSelectionRoutesToPerplexity(t *testing.T) {
	s := testSettings(t)
	openaiSrv, openaiCalls, _ := chatEndpoint(t, "from openai")
	pplxSrv, pplxCalls, pplxModel := chatEndpoint(t, "from perplexity")
	s.BaseURLs["openai"] = openaiSrv.URL
	s.BaseURLs["perplexity"] = pplxSrv.URL
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-test")

	var out bytes.Buffer
	recorder := metrics.New()
	session := NewSession(SessionConfig{
		Reader:  newScriptedReader("perplexity", "one", "two"),
		Out:     &out,
		History: history.New(history.NewMemoryStore(10), 10),
		Factory: func(p llm.ProviderType) (llm.Provider, error) {
			return createProvider(p, s, quietLogs())
		},
		Observer: recorder,
		Fallback: s.Fallback(),
	})

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if n := atomic.LoadInt32(pplxCalls); n != 2 {
		t.Errorf("expected 2 perplexity requests, got %d", n)
	}
	if n := atomic.LoadInt32(openaiCalls); n != 0 {
		t.Errorf("expected no openai requests, got %d", n)
	}
	if got, _ := pplxModel.Load().(string); got != llm.ModelPerplexitySonar {
		t.Errorf("expected model %q, got %q", llm.ModelPerplexitySonar, got)
	}
	if strings.Count(out.String(), "from perplexity") != 2 {
		t.Errorf("expected both responses rendered, got %q", out.String())
	}
	if sum := recorder.Summary(); sum.Turns != 2 || sum.Failed != 0 {
		t.Errorf("unexpected metrics summary %v", sum)
	}
}

func TestListProviders(t *testing.T) {
	s := testSettings(t)
	s.DefaultProvider = "perplexity"
	s.Models["openai"] = "gpt-4o"
	t.Setenv("OPENAI_API_KEY", "sk-test")

	var buf bytes.Buffer
	if err := ListProviders(&buf, s); err != nil {
		t.Fatalf("ListProviders failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"openai", "gpt-4o", "OPENAI_API_KEY", "perplexity (default)", "PERPLEXITY_API_KEY", "gemini"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}

	var openaiRow, pplxRow string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "OPENAI_API_KEY"):
			openaiRow = line
		case strings.Contains(line, "PERPLEXITY_API_KEY"):
			pplxRow = line
		}
	}
	if !strings.Contains(openaiRow, "yes") || !strings.Contains(pplxRow, "no") {
		t.Errorf("unexpected credential status rows:\n%s\n%s", openaiRow, pplxRow)
	}
}

func TestShowHistory(t *testing.T) {
	s := testSettings(t)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := ShowHistory(ctx, &buf, s, HistoryQuery{}); err != nil {
		t.Fatalf("ShowHistory failed: %v", err)
	}
	if buf.String() != "No history yet.\n" {
		t.Errorf("unexpected empty output %q", buf.String())
	}

	if err := history.NewFileStore(s.History.File, 100).Save(ctx, []string{"hello", "exit"}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	buf.Reset()
	if err := ShowHistory(ctx, &buf, s, HistoryQuery{}); err != nil {
		t.Fatalf("ShowHistory failed: %v", err)
	}
	if buf.String() != "    1  hello\n    2  exit\n" {
		t.Errorf("unexpected listing %q", buf.String())
	}

	if err := history.NewFileStore(s.History.File, 100).Save(ctx, []string{"hello", "help me"}); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	buf.Reset()
	if err := ShowHistory(ctx, &buf, s, HistoryQuery{Prefix: "hel"}); err != nil {
		t.Fatalf("ShowHistory --prefix failed: %v", err)
	}
	if buf.String() != "    2x hello\n    1x help me\n" {
		t.Errorf("unexpected prefix listing %q", buf.String())
	}

	buf.Reset()
	if err := ShowHistory(ctx, &buf, s, HistoryQuery{Clear: true}); err != nil {
		t.Fatalf("ShowHistory --clear failed: %v", err)
	}
	entries, _ := history.NewFileStore(s.History.File, 100).Load(ctx)
	if len(entries) != 0 {
		t.Errorf("expected history cleared, got %v", entries)
	}
}

func TestReportMetrics(t *testing.T) {
	s := testSettings(t)
	s.Stats = true
	s.Metrics.File = filepath.Join(t.TempDir(), "gptcmd.prom")

	recorder := metrics.New()
	recorder.ObserveTurn("openai", 0, nil)

	var out bytes.Buffer
	reportMetrics(Options{Settings: s, Logs: quietLogs(), Stdout: &out}, recorder)

	if !strings.Contains(out.String(), "Session stats: 1 turns, 0 failed") {
		t.Errorf("unexpected stats output %q", out.String())
	}
	if _, err := os.Stat(s.Metrics.File); err != nil {
		t.Errorf("expected metrics file to be written: %v", err)
	}
}

func TestShowHistoryInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		s := testSettings(t)
		if err := history.NewFileStore(s.History.File, 100).Save(ctx, []string{"hi", "hi", "exit"}); err != nil {
			t.Fatalf("seed history: %v", err)
		}

		var buf bytes.Buffer
		if err := ShowHistory(ctx, &buf, s, HistoryQuery{Info: true}); err != nil {
			t.Fatalf("ShowHistory --info failed: %v", err)
		}
		want := "Backend:  file\nLocation: " + s.History.File + "\nEntries:  3 (2 distinct)\n"
		if buf.String() != want {
			t.Errorf("unexpected info %q, want %q", buf.String(), want)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		s := testSettings(t)
		s.History.DB = filepath.Join(t.TempDir(), "history.db")
		for _, entries := range [][]string{{"one"}, {"two", "exit"}} {
			store, err := history.OpenSqlite(s.History.DB, 100)
			if err != nil {
				t.Fatalf("OpenSqlite failed: %v", err)
			}
			if err := store.Save(ctx, entries); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			store.Close()
		}

		var buf bytes.Buffer
		if err := ShowHistory(ctx, &buf, s, HistoryQuery{Info: true}); err != nil {
			t.Fatalf("ShowHistory --info failed: %v", err)
		}
		for _, want := range []string{"Backend:  sqlite", "Location: " + s.History.DB, "Sessions: 2", "Entries:  3 (3 distinct)"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in %q", want, buf.String())
			}
		}
	})

	t.Run("disabled", func(t *testing.T) {
		s := testSettings(t)
		s.History.Disabled = true

		var buf bytes.Buffer
		if err := ShowHistory(ctx, &buf, s, HistoryQuery{Info: true}); err != nil {
			t.Fatalf("ShowHistory --info failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Backend:  memory") {
			t.Errorf("unexpected info %q", buf.String())
		}
	})
}
