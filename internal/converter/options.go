package converter

import (
	"log/slog"
	"path"

	"github.com/starford/mddita/internal/diagram"
	"github.com/starford/mddita/internal/dita"
	"github.com/starford/mddita/internal/ditamap"
)

// Shape selects the topic type a document converts into.
type Shape string

const (
	ShapeTask    Shape = "task"
	ShapeConcept Shape = "concept"
)

// DocumentRule selects documents by base-name glob.
type DocumentRule struct {
	Pattern string
	Shape   Shape
}

// Options describe the input and output trees.
type Options struct {
	InputDir     string
	IncludesDir  string
	Documents    []DocumentRule
	SkipPrefixes []string

	OutputDir string
	Layout    dita.Layout
	MapsDir   string
	MapFile   string
	Clean     bool

	DiagramLanguages []string
	Map              ditamap.Rules
}

// DefaultOptions converts the current directory into dita_output.
func DefaultOptions() Options {
	return Options{
		InputDir:    ".",
		IncludesDir: "_includes",
		Documents: []DocumentRule{
			{Pattern: "QUICKSTART.md", Shape: ShapeTask},
			{Pattern: "GUI-QUICKSTART.md", Shape: ShapeTask},
			{Pattern: "BEST-PRACTICES.md", Shape: ShapeConcept},
		},
		SkipPrefixes:     []string{"_", "common", "scripts"},
		OutputDir:        "dita_output",
		Layout:           dita.DefaultLayout,
		MapsDir:          "maps",
		MapFile:          "linux-storage-guides.ditamap",
		Clean:            true,
		DiagramLanguages: []string{"mermaid"},
		Map:              ditamap.DefaultRules(),
	}
}

func (o Options) outputDirs() []string {
	return []string{o.Layout.Warehouse, o.Layout.Topics, o.MapsDir, o.Layout.Images}
}

func (o Options) mapPath() string {
	return path.Join(o.MapsDir, o.MapFile)
}

// Option configures a Converter.
type Option func(*Converter)

// WithRenderer sets the diagram renderer. Without one diagrams become
// placeholders.
func WithRenderer(r diagram.Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithCache sets the diagram render cache.
func WithCache(cache diagram.Cache) Option {
	return func(c *Converter) {
		c.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}
