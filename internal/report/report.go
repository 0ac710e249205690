// Package report collects the outcome of a conversion run, including the
// non-fatal conditions the pipeline tolerates.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/starford/mddita/internal/models"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindMissingFragments   Kind = "missing_fragments"
	KindDanglingReference  Kind = "dangling_reference"
	KindDiagramPlaceholder Kind = "diagram_placeholder"
	KindReadFailed         Kind = "read_failed"
)

// Diagnostic is one tolerated failure.
type Diagnostic struct {
	Kind   Kind   `json:"kind"`
	Source string `json:"source"`
	Detail string `json:"detail"`
}

// Collector accumulates diagnostics and mirrors them to the logger at WARN.
// It is safe for concurrent use.
type Collector struct {
	logger *slog.Logger

	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates a Collector. A nil logger disables mirroring.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// Warn records a diagnostic.
func (c *Collector) Warn(kind Kind, source, detail string) {
	c.mu.Lock()
	c.items = append(c.items, Diagnostic{Kind: kind, Source: source, Detail: detail})
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Warn("diagnostic: "+string(kind),
			slog.String("source", source),
			slog.String("detail", detail))
	}
}

// Items returns a copy of the recorded diagnostics in order.
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Count returns how many diagnostics of kind were recorded.
func (c *Collector) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Report summarises one conversion run.
type Report struct {
	RunID       string         `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Fragments   int            `json:"fragments"`
	Topics      []models.Topic `json:"topics"`
	Files       []string       `json:"files"`
	MapFile     string         `json:"map_file,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}

// WriteSummary prints the output structure and any diagnostics.
func (r *Report) WriteSummary(w io.Writer) error {
	dirs := make(map[string]int)
	var order []string
	for _, f := range r.Files {
		dir := path.Dir(f)
		if _, ok := dirs[dir]; !ok {
			order = append(order, dir)
		}
		dirs[dir]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversion %s finished in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  fragments: %d\n  topics:    %d\n", r.Fragments, len(r.Topics))
	for _, dir := range order {
		fmt.Fprintf(&b, "  %s/: %d files\n", dir, dirs[dir])
	}
	if r.MapFile != "" {
		fmt.Fprintf(&b, "  map: %s\n", r.MapFile)
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&b, "  warning [%s] %s: %s\n", d.Kind, d.Source, d.Detail)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Latest holds the outcome of the most recent run for readers that outlive a
// single conversion, such as the preview server. It is safe for concurrent use.
type Latest struct {
	mu     sync.RWMutex
	report *Report
	err    error
}

// Store replaces the held outcome.
func (l *Latest) Store(r *Report, err error) {
	l.mu.Lock()
	l.report, l.err = r, err
	l.mu.Unlock()
}

// Load returns the held outcome. Both values are nil before the first Store.
func (l *Latest) Load() (*Report, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.report, l.err
}
