package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Document shapes selected by input.documents rules.
const (
	ShapeTask    = "task"
	ShapeConcept = "concept"
)

var endpointRe = regexp.MustCompile(`^https?://`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Input   InputConfig       `yaml:"input"`
	Output  OutputConfig      `yaml:"output"`
	Diagram DiagramConfig     `yaml:"diagram"`
	Map     MapConfig         `yaml:"map"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Diagram.Validate(); err != nil {
		return fmt.Errorf("diagram: %w", err)
	}
	if err := c.Map.Validate(); err != nil {
		return fmt.Errorf("map: %w", err)
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DocumentRule maps a file-name glob to the topic shape it converts into.
type DocumentRule struct {
	Pattern string `yaml:"pattern"`
	Shape   string `yaml:"shape"`
}

// Validate validates a document rule.
func (r DocumentRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Pattern, validation.Required),
		validation.Field(&r.Shape, validation.Required, validation.In(ShapeTask, ShapeConcept)),
	)
}

// InputConfig describes the Markdown source tree.
type InputConfig struct {
	Dir          string         `yaml:"dir"`
	IncludesDir  string         `yaml:"includes_dir"`
	Documents    []DocumentRule `yaml:"documents"`
	SkipPrefixes []string       `yaml:"skip_prefixes"`
}

// Validate validates the input configuration.
func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.IncludesDir, validation.Required),
		validation.Field(&c.Documents, validation.Required),
	)
}

// OutputConfig describes the generated DITA tree.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	WarehouseDir string `yaml:"warehouse_dir"`
	TopicsDir    string `yaml:"topics_dir"`
	MapsDir      string `yaml:"maps_dir"`
	ImagesDir    string `yaml:"images_dir"`
	MapFile      string `yaml:"map_file"`
	Clean        bool   `yaml:"clean"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.WarehouseDir, validation.Required),
		validation.Field(&c.TopicsDir, validation.Required),
		validation.Field(&c.MapsDir, validation.Required),
		validation.Field(&c.ImagesDir, validation.Required),
		validation.Field(&c.MapFile, validation.Required),
	)
}

// DiagramConfig configures the diagram rendering service.
//
// CachePath points at a SQLite file that keeps rendered diagrams across runs.
// An empty CachePath disables the cache; Enabled=false skips rendering and
// emits placeholders.
type DiagramConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	Languages []string      `yaml:"languages"`
	CachePath string        `yaml:"cache_path"`
}

// Validate validates the diagram configuration.
func (c *DiagramConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required, validation.Match(endpointRe)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Languages, validation.Required),
	)
}

// MatchRule maps a case-insensitive substring to a label.
type MatchRule struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
}

// Validate validates a match rule.
func (r MatchRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Match, validation.Required),
		validation.Field(&r.Label, validation.Required),
	)
}

// MapConfig holds the navigation map grouping rules.
type MapConfig struct {
	Title              string            `yaml:"title"`
	DistributionPrefix string            `yaml:"distribution_prefix"`
	Singletons         []string          `yaml:"singletons"`
	Labels             map[string]string `yaml:"labels"`
	Protocols          []MatchRule       `yaml:"protocols"`
	OtherProtocol      string            `yaml:"other_protocol"`
	CommonTitle        string            `yaml:"common_title"`
	ParentTitles       []MatchRule       `yaml:"parent_titles"`
}

// Validate validates the map configuration.
func (c *MapConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Protocols),
		validation.Field(&c.OtherProtocol, validation.Required),
		validation.Field(&c.CommonTitle, validation.Required),
		validation.Field(&c.ParentTitles),
	)
}

// WatchConfig configures rebuild-on-change.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config set up for the Linux storage
// configuration guides tree.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Input: InputConfig{
			Dir:         ".",
			IncludesDir: "_includes",
			Documents: []DocumentRule{
				{Pattern: "QUICKSTART.md", Shape: ShapeTask},
				{Pattern: "GUI-QUICKSTART.md", Shape: ShapeTask},
				{Pattern: "BEST-PRACTICES.md", Shape: ShapeConcept},
			},
			SkipPrefixes: []string{"_", "common", "scripts"},
		},
		Output: OutputConfig{
			Dir:          "dita_output",
			WarehouseDir: "warehouse",
			TopicsDir:    "topics",
			MapsDir:      "maps",
			ImagesDir:    "images",
			MapFile:      "linux-storage-guides.ditamap",
			Clean:        true,
		},
		Diagram: DiagramConfig{
			Enabled:   true,
			Endpoint:  "https://kroki.io",
			Timeout:   30 * time.Second,
			Languages: []string{"mermaid"},
		},
		Map: MapConfig{
			Title:              "Linux Storage Configuration Guides",
			DistributionPrefix: "distributions/",
			Singletons:         []string{"Proxmox"},
			Labels: map[string]string{
				"rhel": "RHEL",
				"suse": "SUSE",
			},
			Protocols: []MatchRule{
				{Match: "nvme-tcp", Label: "NVMe-TCP"},
				{Match: "iscsi", Label: "iSCSI"},
			},
			OtherProtocol: "Other",
			CommonTitle:   "Common Resources",
			ParentTitles: []MatchRule{
				{Match: "best-practices", Label: "Best Practices"},
			},
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
