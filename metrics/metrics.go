// Package metrics records per-turn counters and latencies on a private
// Prometheus registry.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/richinex/gptcmd/llm"
)

// OutcomeSuccess labels turns that produced a response.
const OutcomeSuccess = "success"

// Recorder implements llm.Observer.
type Recorder struct {
	registry *prometheus.Registry
	turns    *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	mu     sync.Mutex
	total  int
	failed int
	spent  time.Duration
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gptcmd_turns_total",
			Help: "Prompts sent to a provider, by outcome.",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gptcmd_response_seconds",
			Help:    "Wall-clock time spent waiting for a provider.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"provider"}),
	}
	r.registry.MustRegister(r.turns, r.latency)
	return r
}

// ObserveTurn records one completed provider call.
func (r *Recorder) ObserveTurn(provider string, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(llm.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}

	r.turns.WithLabelValues(provider, outcome).Inc()
	r.latency.WithLabelValues(provider).Observe(elapsed.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	if err != nil {
		r.failed++
	}
	r.spent += elapsed
}

// WriteFile writes the registry in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Summary is an end-of-run usage digest.
type Summary struct {
	Turns   int
	Failed  int
	Average time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("%d turns, %d failed, avg %.2fs", s.Turns, s.Failed, s.Average.Seconds())
}

// Summary returns totals for this run.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Turns: r.total, Failed: r.failed}
	if r.total > 0 {
		s.Average = r.spent / time.Duration(r.total)
	}
	return s
}

var _ llm.Observer = (*Recorder)(nil)
