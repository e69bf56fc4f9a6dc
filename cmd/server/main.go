// Package main is the entry point of the flashdeck API server, which serves
// users' flashcard decks and generates new cards from study text with Gemini.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
)

// options are the command-line flags.
type options struct {
	configFile string
	envFile    string
	migrate    string
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("flashdeck: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := loadEnvFile(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("backend", cfg.Backend.Mode),
		slog.Bool("gemini_configured", cfg.LLM.GeminiAPIKey != ""))

	if opts.migrate != "" {
		return runMigrations(ctx, cfg, opts.migrate, l)
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("flashdeck", pflag.ContinueOnError)
	flags.StringVar(&opts.configFile, "config", "", "path to a YAML config file (default ./config.yaml when present)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration; a missing file is ignored")
	flags.StringVar(&opts.migrate, "migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// loadEnvFile exports the variables of a dotenv file. Variables already set
// in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
