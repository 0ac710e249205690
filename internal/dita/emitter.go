package dita

import (
	"context"
	"path"
	"strings"

	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/report"
)

// DiagramAssets turns a diagram description into an image file under the
// images directory. On failure it still returns the name of a placeholder
// file together with the error.
type DiagramAssets interface {
	Asset(ctx context.Context, language, code string) (string, error)
}

// Layout names the output subdirectories topics and assets are written to.
type Layout struct {
	Warehouse string
	Topics    string
	Images    string
}

// DefaultLayout is the layout used when none is configured.
var DefaultLayout = Layout{Warehouse: "warehouse", Topics: "topics", Images: "images"}

// Document is a source file selected for task or concept conversion.
type Document struct {
	Path    string // relative to the input root, slash-separated
	ID      string
	Title   string
	Content string
}

// Rendered is one emitted topic file.
type Rendered struct {
	Topic models.Topic
	Data  []byte
}

// Emitter converts parsed documents into DITA topics.
type Emitter struct {
	registry  *Registry
	diagrams  DiagramAssets
	languages map[string]struct{}
	collector *report.Collector
	layout    Layout
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithDiagrams routes code blocks tagged with one of languages through d.
func WithDiagrams(d DiagramAssets, languages ...string) Option {
	return func(e *Emitter) {
		e.diagrams = d
		for _, l := range languages {
			e.languages[strings.ToLower(l)] = struct{}{}
		}
	}
}

// WithCollector reports dangling references and diagram placeholders to c.
func WithCollector(c *report.Collector) Option {
	return func(e *Emitter) {
		e.collector = c
	}
}

// WithLayout sets the output subdirectory names used in references.
func WithLayout(l Layout) Option {
	return func(e *Emitter) {
		e.layout = l
	}
}

// New creates an Emitter that resolves includes against registry.
func New(registry *Registry, opts ...Option) *Emitter {
	e := &Emitter{
		registry:  registry,
		languages: make(map[string]struct{}),
		layout:    DefaultLayout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the fragment registry the emitter resolves against.
func (e *Emitter) Registry() *Registry {
	return e.registry
}

func (e *Emitter) isDiagram(language string) bool {
	if e.diagrams == nil || language == "" {
		return false
	}
	_, ok := e.languages[strings.ToLower(language)]
	return ok
}

func (e *Emitter) warn(kind report.Kind, source, detail string) {
	if e.collector != nil {
		e.collector.Warn(kind, source, detail)
	}
}

func (e *Emitter) topicFile(id string) string {
	return path.Join(e.layout.Topics, id+".dita")
}

// conversion carries per-file state for the shared block rule.
type conversion struct {
	ctx    context.Context
	e      *Emitter
	source string
}

func (e *Emitter) conversion(ctx context.Context, source string) *conversion {
	return &conversion{ctx: ctx, e: e, source: source}
}
