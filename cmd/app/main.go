package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/docstore"
	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/search"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// runMCP serves the journal tools over MCP stdio so LLM clients can read and
// write the document without going through HTTP.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := docstore.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	index, err := search.Open(cfg.Search.Path)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer index.Close()

	if doc, err := store.Load(); err == nil {
		_ = index.Rebuild(doc)
	}

	srv := mcpserver.New(journal.NewService(store), index)
	return srv.ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Accessibility learning companion backend: image description, text simplification, notes, and live captions",
		Action: run,
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
				Name:   "mcp",
				Usage:  "Serve journal tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
