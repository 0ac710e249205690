// Package converter runs the conversion pipeline: fragments first, then
// documents, then the navigation map.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mddita/internal/apperr"
	"github.com/starford/mddita/internal/diagram"
	"github.com/starford/mddita/internal/dita"
	"github.com/starford/mddita/internal/ditamap"
	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/parser"
	"github.com/starford/mddita/internal/report"
	"github.com/starford/mddita/internal/storage"
)

// Converter turns a Markdown tree into a DITA tree.
type Converter struct {
	opts     Options
	renderer diagram.Renderer
	cache    diagram.Cache
	logger   *slog.Logger
}

// New creates a Converter.
func New(opts Options, options ...Option) *Converter {
	c := &Converter{opts: opts, logger: slog.Default()}
	for _, o := range options {
		o(c)
	}
	return c
}

// run holds the state of one conversion.
type run struct {
	*Converter
	ctx       context.Context
	logger    *slog.Logger
	in        storage.Provider
	out       storage.Provider
	collector *report.Collector
	report    *report.Report
}

// Run converts the input tree. A missing input root is the only input
// condition that fails the run; everything else is reported as a
// diagnostic.
func (c *Converter) Run(ctx context.Context) (*report.Report, error) {
	rep := &report.Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	logger := c.logger.With(slog.String("run_id", rep.RunID))

	in, err := storage.NewFS(c.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("converter: %w: %s", apperr.ErrInputNotFound, c.opts.InputDir)
	}
	out, err := c.prepareOutput()
	if err != nil {
		return nil, err
	}

	r := &run{
		Converter: c,
		ctx:       ctx,
		logger:    logger,
		in:        in,
		out:       out,
		collector: report.NewCollector(logger),
		report:    rep,
	}
	logger.Info("converter: started",
		slog.String("input", in.Root()),
		slog.String("output", out.Root()))

	registry := r.registerFragments()
	assets := diagram.NewAssets(out, c.opts.Layout.Images,
		diagram.WithRenderer(c.renderer),
		diagram.WithCache(c.cache),
		diagram.WithLogger(logger))
	emitter := dita.New(registry,
		dita.WithDiagrams(assets, c.opts.DiagramLanguages...),
		dita.WithCollector(r.collector),
		dita.WithLayout(c.opts.Layout))

	if err := r.convertFragments(emitter); err != nil {
		return nil, err
	}
	if err := r.convertDocuments(emitter); err != nil {
		return nil, err
	}
	if err := r.writeMap(); err != nil {
		return nil, err
	}

	rep.Duration = time.Since(rep.StartedAt)
	rep.Diagnostics = r.collector.Items()
	logger.Info("converter: finished",
		slog.Int("fragments", rep.Fragments),
		slog.Int("topics", len(rep.Topics)),
		slog.Int("files", len(rep.Files)),
		slog.Int("diagnostics", len(rep.Diagnostics)),
		slog.Duration("duration", rep.Duration))
	return rep, nil
}

// prepareOutput creates the output tree, removing stale subdirectories
// first when cleaning is enabled.
func (c *Converter) prepareOutput() (*storage.FS, error) {
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("converter: create output dir: %w", err)
	}
	out, err := storage.NewFS(c.opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("converter: %w", err)
	}
	for _, dir := range c.opts.outputDirs() {
		if c.opts.Clean {
			if err := out.RemoveAll(dir); err != nil {
				return nil, fmt.Errorf("converter: clean output: %w", err)
			}
		}
		if err := out.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("converter: create output: %w", err)
		}
	}
	return out, nil
}

// registerFragments assigns identifiers to every include file and seals
// the registry, so references between fragments resolve as well.
func (r *run) registerFragments() *dita.Registry {
	registry := dita.NewRegistry()
	defer registry.Seal()

	dir := r.opts.IncludesDir
	if !r.in.Exists(dir) {
		r.collector.Warn(report.KindMissingFragments, dir, "includes directory not found")
		return registry
	}
	metas, err := r.in.List(dir, ".md")
	if err != nil {
		r.collector.Warn(report.KindMissingFragments, dir, err.Error())
		return registry
	}
	for _, m := range metas {
		// Cannot fail before Seal.
		_, _ = registry.Register(m.Path)
	}
	return registry
}

func (r *run) convertFragments(e *dita.Emitter) error {
	for _, f := range e.Registry().Fragments() {
		data, err := r.in.Read(path.Join(r.opts.IncludesDir, f.Path))
		if err != nil {
			r.collector.Warn(report.KindReadFailed, f.Path, err.Error())
			continue
		}
		out, err := e.Warehouse(r.ctx, f.Path, string(data))
		if err != nil {
			return fmt.Errorf("converter: fragment %s: %w", f.Path, err)
		}
		if err := r.write(out); err != nil {
			return err
		}
		r.report.Fragments++
		r.logger.Debug("converter: fragment converted", slog.String("path", f.Path))
	}
	return nil
}

func (r *run) convertDocuments(e *dita.Emitter) error {
	docs, err := r.discover()
	if err != nil {
		return err
	}
	for _, d := range docs {
		data, err := r.in.Read(d.path)
		if err != nil {
			r.collector.Warn(report.KindReadFailed, d.path, err.Error())
			continue
		}
		content := string(data)
		doc := dita.Document{
			Path:    d.path,
			ID:      dita.DocumentID(d.path),
			Title:   parser.Title(content, d.path),
			Content: content,
		}

		topic, err := r.convertDocument(e, d.shape, doc)
		if err != nil {
			return fmt.Errorf("converter: document %s: %w", d.path, err)
		}
		r.report.Topics = append(r.report.Topics, topic)
		r.logger.Debug("converter: document converted",
			slog.String("path", d.path),
			slog.String("shape", string(d.shape)))
	}
	return nil
}

func (r *run) convertDocument(e *dita.Emitter, shape Shape, doc dita.Document) (models.Topic, error) {
	if shape == ShapeTask {
		out, err := e.Task(r.ctx, doc)
		if err != nil {
			return models.Topic{}, err
		}
		return out.Topic, r.write(out)
	}

	parent, children, err := e.ConceptSections(r.ctx, doc)
	if err != nil {
		return models.Topic{}, err
	}
	for _, child := range children {
		if err := r.write(child); err != nil {
			return models.Topic{}, err
		}
	}
	return parent, nil
}

func (r *run) write(out dita.Rendered) error {
	if err := r.out.Write(out.Topic.File, out.Data); err != nil {
		return fmt.Errorf("converter: write %s: %w", out.Topic.File, err)
	}
	r.report.Files = append(r.report.Files, out.Topic.File)
	return nil
}

func (r *run) writeMap() error {
	if len(r.report.Topics) == 0 {
		r.logger.Info("converter: no topics, map skipped")
		return nil
	}
	rules := r.opts.Map
	rules.TopicsDir = r.opts.Layout.Topics
	p := r.opts.mapPath()
	if err := r.out.Write(p, ditamap.Build(r.report.Topics, rules)); err != nil {
		return fmt.Errorf("converter: write map: %w", err)
	}
	r.report.Files = append(r.report.Files, p)
	r.report.MapFile = p
	return nil
}

type match struct {
	path  string
	shape Shape
}

// discover returns the documents selected by the rules, rule by rule and
// in lexical order within a rule. Skipped prefixes, the includes directory
// and the output tree are never considered.
func (r *run) discover() ([]match, error) {
	metas, err := r.in.List("", ".md")
	if err != nil {
		return nil, fmt.Errorf("converter: list input: %w", err)
	}

	excluded := append([]string{}, r.opts.SkipPrefixes...)
	excluded = append(excluded, strings.TrimSuffix(r.opts.IncludesDir, "/")+"/")
	if rel, ok := r.outputWithinInput(); ok {
		excluded = append(excluded, rel+"/")
	}

	var candidates []string
	for _, m := range metas {
		if !hasAnyPrefix(m.Path, excluded) {
			candidates = append(candidates, m.Path)
		}
	}

	claimed := make(map[string]bool)
	var out []match
	for _, rule := range r.opts.Documents {
		for _, p := range candidates {
			if claimed[p] {
				continue
			}
			if ok, _ := path.Match(rule.Pattern, path.Base(p)); ok {
				claimed[p] = true
				out = append(out, match{path: p, shape: rule.Shape})
			}
		}
	}
	return out, nil
}

// outputWithinInput returns the output root relative to the input root when
// it lies inside it.
func (r *run) outputWithinInput() (string, bool) {
	rel, err := filepath.Rel(r.in.Root(), r.out.Root())
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
