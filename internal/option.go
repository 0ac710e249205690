package internal

import "io"

// Mode selects what Run does.
type Mode string

const (
	// ModeConvert runs one conversion and prints a summary.
	ModeConvert Mode = "convert"
	// ModeWatch converts, then rebuilds whenever a source changes.
	ModeWatch Mode = "watch"
	// ModeServe serves the output tree and build status over HTTP.
	ModeServe Mode = "serve"
	// ModeMCP exposes the converter as MCP tools on stdin/stdout.
	ModeMCP Mode = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	mode    Mode
	verbose bool
	watch   bool
	stdout  io.Writer
	stderr  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode sets the run mode. The default is ModeConvert.
func WithMode(m Mode) Option {
	return func(a *application) {
		a.mode = m
	}
}

// WithVerbose forces debug logging regardless of the configured level.
func WithVerbose(v bool) Option {
	return func(a *application) {
		a.verbose = v
	}
}

// WithWatch makes ModeServe rebuild on source changes.
func WithWatch(w bool) Option {
	return func(a *application) {
		a.watch = w
	}
}

// WithOutput sets where summaries and logs are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}
