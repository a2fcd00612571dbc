package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/starford/worklog/internal"
	pkgconfig "github.com/starford/worklog/pkg/config"
)

type runner func(ctx context.Context, opts ...internal.Option) error

// action loads the config file and hands it to run. Commands that own stdout
// log to stderr instead.
func action(run runner, name string, logToStderr bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		// Without a config file the defaults apply, so a bare checkout with a
		// ./content directory runs as is.
		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(afero.NewOsFs(), configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
		}
		if logToStderr {
			opts = append(opts, internal.WithLogOutput(os.Stderr))
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s error: %w", name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "worklog",
		Usage:  "Personal worklog site rendered from a tree of Markdown documents",
		Action: action(internal.Run, "app run", false),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the site over HTTP with live reload",
				Action: action(internal.Run, "app run", false),
			},
			{
				Name:   "build",
				Usage:  "Render the site into static files",
				Action: action(internal.Build, "build", false),
			},
			{
				Name:   "routes",
				Usage:  "Print the path of every section and post",
				Action: action(internal.Routes, "routes", true),
			},
			{
				Name:   "sync",
				Usage:  "Replace the content tree with the content of the configured GitHub repository",
				Action: action(internal.Sync, "sync", false),
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only content tools over MCP stdio",
				Action: action(internal.ServeMCP, "mcp", true),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
