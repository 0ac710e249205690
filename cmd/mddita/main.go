package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mddita/internal"
	pkgconfig "github.com/starford/mddita/pkg/config"
)

// loadConfig reads the config file when it exists and applies the
// input/output overrides from the command line.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}

	if v := cmd.String("input-dir"); v != "" {
		cfg.Input.Dir = v
	}
	if v := cmd.String("output-dir"); v != "" {
		cfg.Output.Dir = v
	}
	return cfg, nil
}

func runMode(mode internal.Mode, extra ...func(*cli.Command, *internal.Config) []internal.Option) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
			internal.WithVerbose(cmd.Bool("verbose")),
		}
		for _, fn := range extra {
			opts = append(opts, fn(cmd, cfg)...)
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func serveOptions(cmd *cli.Command, cfg *internal.Config) []internal.Option {
	if port := int(cmd.Int("port")); port != 0 {
		cfg.App.HTTP.Port = port
	}
	return []internal.Option{internal.WithWatch(cmd.Bool("watch"))}
}

func main() {
	cmd := &cli.Command{
		Name:   "mddita",
		Usage:  "Convert Markdown documentation with Jekyll includes into a DITA topic tree and map",
		Action: runMode(internal.ModeConvert),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "mddita.yaml",
				Value:       "mddita.yaml",
				Sources:     cli.EnvVars("MDDITA_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "input-dir",
				Aliases: []string{"i"},
				Usage:   "Markdown source root (overrides input.dir)",
				Sources: cli.EnvVars("MDDITA_INPUT_DIR"),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "DITA output root (overrides output.dir)",
				Sources: cli.EnvVars("MDDITA_OUTPUT_DIR"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "convert",
				Usage:  "Convert the source tree once and print a summary",
				Action: runMode(internal.ModeConvert),
			},
			{
				Name:   "watch",
				Usage:  "Convert, then rebuild whenever a Markdown source changes",
				Action: runMode(internal.ModeWatch),
			},
			{
				Name:  "serve",
				Usage: "Serve the output tree, rendered sources and build events over HTTP",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP port (overrides app.http.port)",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Rebuild on source changes and push build events",
					},
				},
				Action: runMode(internal.ModeServe, serveOptions),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the converter as MCP tools on stdin/stdout",
				Action: runMode(internal.ModeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
