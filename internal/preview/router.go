// Package preview serves the generated DITA tree, the Markdown sources and
// the outcome of the last build over HTTP.
package preview

import (
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"

	"github.com/starford/mddita/internal/report"
	"github.com/starford/mddita/internal/storage"
)

// Handler holds the preview route handlers.
type Handler struct {
	source storage.Provider
	latest *report.Latest
	md     goldmark.Markdown
}

// Option configures the router.
type Option func(*routerOptions)

type routerOptions struct {
	events     http.Handler
	requestLog bool
}

// WithEvents mounts h at GET /api/events.
func WithEvents(h http.Handler) Option {
	return func(o *routerOptions) {
		o.events = h
	}
}

// WithRequestLog enables chi's request logger.
func WithRequestLog() Option {
	return func(o *routerOptions) {
		o.requestLog = true
	}
}

// NewRouter creates a chi router that serves the output directory at the
// root, rendered sources under /source and build status under /api.
func NewRouter(source storage.Provider, outputDir string, latest *report.Latest, opts ...Option) chi.Router {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}
	h := &Handler{source: source, latest: latest, md: newMarkdown()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if o.requestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/report", h.Report)
	if o.events != nil {
		r.Get("/api/events", o.events.ServeHTTP)
	}
	r.Get("/source/*", h.Source)
	r.Handle("/*", http.FileServer(http.Dir(outputDir)))

	return r
}

// Report handles GET /api/report.
func (h *Handler) Report(w http.ResponseWriter, _ *http.Request) {
	rep, err := h.latest.Load()
	switch {
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	case rep == nil:
		writeJSON(w, http.StatusNotFound, errorBody("no build yet"))
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

// Source handles GET /source/*. Only Markdown files are served.
func (h *Handler) Source(w http.ResponseWriter, r *http.Request) {
	path := sourcePath(r)
	if path == "" || !strings.HasSuffix(path, ".md") {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	data, err := h.source.Read(filepath.FromSlash(path))
	if err != nil {
		slog.Debug("preview: source read failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	page, err := renderSource(h.md, path, data)
	if err != nil {
		slog.Error("preview: render failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// sourcePath extracts the source path from the URL. Encoded slashes are
// accepted.
func sourcePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
