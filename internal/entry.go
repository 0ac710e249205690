// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/mddita/internal/converter"
	"github.com/starford/mddita/internal/diagram"
	"github.com/starford/mddita/internal/dita"
	"github.com/starford/mddita/internal/ditamap"
	"github.com/starford/mddita/internal/mcpserver"
	"github.com/starford/mddita/internal/preview"
	"github.com/starford/mddita/internal/report"
	"github.com/starford/mddita/internal/sse"
	"github.com/starford/mddita/internal/storage"
	"github.com/starford/mddita/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		mode:   ModeConvert,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Logs go to stderr so stdout stays free for summaries and MCP traffic.
	logger := newLogger(cfg.App, app.verbose, app.stderr)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", string(app.mode)),
		slog.String("input", cfg.Input.Dir),
		slog.String("output", cfg.Output.Dir),
		slog.Bool("diagrams", cfg.Diagram.Enabled),
		slog.String("diagram_cache", cfg.Diagram.CachePath))

	convOpts := []converter.Option{converter.WithLogger(logger)}
	if cfg.Diagram.Enabled {
		convOpts = append(convOpts, converter.WithRenderer(
			diagram.NewKroki(cfg.Diagram.Endpoint, cfg.Diagram.Timeout)))
	}
	if cfg.Diagram.CachePath != "" {
		cache, err := diagram.OpenCache(cfg.Diagram.CachePath)
		if err != nil {
			return fmt.Errorf("init diagram cache: %w", err)
		}
		defer cache.Close()
		convOpts = append(convOpts, converter.WithCache(cache))
	}
	conv := converter.New(ConverterOptions(cfg), convOpts...)

	b := &builder{
		runner: conv,
		latest: &report.Latest{},
		logger: logger,
	}

	switch app.mode {
	case ModeConvert:
		rep, err := conv.Run(ctx)
		if err != nil {
			return err
		}
		return rep.WriteSummary(app.stdout)
	case ModeWatch:
		b.summary = app.stdout
		return app.serve(ctx, logger, b, false, true)
	case ModeServe:
		b.broker = sse.NewBroker()
		defer b.broker.Close()
		return app.serve(ctx, logger, b, true, app.watch)
	case ModeMCP:
		logger.Info("MCP server starting on stdio")
		return mcpserver.New(conv, b.latest).ServeStdio()
	default:
		return fmt.Errorf("unknown mode %q", app.mode)
	}
}

// serve performs an initial build and then runs the preview server, the
// source watcher, or both, until a shutdown signal arrives.
func (app *application) serve(ctx context.Context, logger *slog.Logger, b *builder, withHTTP, withWatch bool) error {
	cfg := app.config

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.build(ctx, nil)

	g, gCtx := errgroup.WithContext(ctx)

	var httpServer *http.Server
	if withHTTP {
		source, err := storage.NewFS(cfg.Input.Dir)
		if err != nil {
			return fmt.Errorf("init source storage: %w", err)
		}
		httpServer = &http.Server{
			Addr: cfg.App.HTTP.Address(),
			Handler: preview.NewRouter(source, cfg.Output.Dir, b.latest,
				preview.WithEvents(b.broker),
				preview.WithRequestLog()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	if withWatch {
		w, err := newWatcher(cfg, logger)
		if err != nil {
			return fmt.Errorf("init watcher: %w", err)
		}
		g.Go(func() error {
			return w.Run(gCtx, b.build)
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		cancel()

		if httpServer != nil {
			logger.Info("Shutting down server...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}

// builder runs conversions for the long-lived modes and fans the outcome
// out to the report holder, the SSE broker and the summary writer.
type builder struct {
	runner  mcpserver.Runner
	latest  *report.Latest
	broker  *sse.Broker
	summary io.Writer
	logger  *slog.Logger
}

func (b *builder) build(ctx context.Context, changed []string) {
	b.publish(sse.EventBuildStarted, sse.BuildStatus{Changed: changed})

	rep, err := b.runner.Run(ctx)
	b.latest.Store(rep, err)
	if err != nil {
		b.logger.Error("build failed", slog.String("error", err.Error()))
		b.publish(sse.EventBuildFailed, sse.BuildStatus{Changed: changed, Error: err.Error()})
		return
	}

	b.publish(sse.EventBuildCompleted, buildStatus(rep, changed))
	if b.summary != nil {
		if err := rep.WriteSummary(b.summary); err != nil {
			b.logger.Warn("write summary failed", slog.String("error", err.Error()))
		}
	}
}

func (b *builder) publish(eventType string, status sse.BuildStatus) {
	if b.broker != nil {
		b.broker.PublishBuild(eventType, status)
	}
}

func buildStatus(rep *report.Report, changed []string) sse.BuildStatus {
	return sse.BuildStatus{
		RunID:       rep.RunID,
		Changed:     changed,
		Topics:      len(rep.Topics),
		Files:       len(rep.Files),
		Diagnostics: len(rep.Diagnostics),
		Duration:    rep.Duration.Round(time.Millisecond).String(),
	}
}

// newWatcher watches the input tree, ignoring the output tree when it lies
// inside it.
func newWatcher(cfg *Config, logger *slog.Logger) (*watcher.Watcher, error) {
	out, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}
	return watcher.New(cfg.Input.Dir,
		watcher.WithIgnore(out),
		watcher.WithDebounce(cfg.Watch.Debounce),
		watcher.WithLogger(logger))
}

func newLogger(cfg ApplicationConfig, verbose bool, w io.Writer) *slog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ConverterOptions maps the configuration onto converter options.
func ConverterOptions(cfg *Config) converter.Options {
	docs := make([]converter.DocumentRule, 0, len(cfg.Input.Documents))
	for _, d := range cfg.Input.Documents {
		docs = append(docs, converter.DocumentRule{Pattern: d.Pattern, Shape: converter.Shape(d.Shape)})
	}

	return converter.Options{
		InputDir:     cfg.Input.Dir,
		IncludesDir:  cfg.Input.IncludesDir,
		Documents:    docs,
		SkipPrefixes: cfg.Input.SkipPrefixes,
		OutputDir:    cfg.Output.Dir,
		Layout: dita.Layout{
			Warehouse: cfg.Output.WarehouseDir,
			Topics:    cfg.Output.TopicsDir,
			Images:    cfg.Output.ImagesDir,
		},
		MapsDir:          cfg.Output.MapsDir,
		MapFile:          cfg.Output.MapFile,
		Clean:            cfg.Output.Clean,
		DiagramLanguages: cfg.Diagram.Languages,
		Map: ditamap.Rules{
			Title:              cfg.Map.Title,
			DistributionPrefix: cfg.Map.DistributionPrefix,
			Singletons:         cfg.Map.Singletons,
			Labels:             cfg.Map.Labels,
			Protocols:          mapRules(cfg.Map.Protocols),
			OtherProtocol:      cfg.Map.OtherProtocol,
			CommonTitle:        cfg.Map.CommonTitle,
			ParentTitles:       mapRules(cfg.Map.ParentTitles),
			TopicsDir:          cfg.Output.TopicsDir,
		},
	}
}

func mapRules(rules []MatchRule) []ditamap.Rule {
	out := make([]ditamap.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, ditamap.Rule{Match: r.Match, Label: r.Label})
	}
	return out
}
