package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendscout/trendscout/internal/app"
	"github.com/trendscout/trendscout/internal/platform/config"
	db "github.com/trendscout/trendscout/internal/storage"
)

func main() {
	mode := flag.String("mode", "resolve", "Service mode (resolve, daemon)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The store is opened and closed inside run so the database is shut
	// down cleanly before any non-zero exit.
	if err := run(ctx, cfg, &logger, *mode); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info().Msg("application stopped")
		case errors.Is(err, app.ErrItemsFailed):
			logger.Error().Msg("run finished with item errors")
			os.Exit(1)
		default:
			logger.Error().Err(err).Msg("application error")
			os.Exit(1)
		}
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, mode string) error {
	database, err := db.Open(cfg.SQLitePath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	application := app.New(cfg, database, logger)

	switch mode {
	case "resolve":
		return application.RunResolve(ctx)
	case "daemon":
		// Health and metrics only make sense for a long-lived process.
		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				logger.Error().Err(err).Msg("health check server error")
			}
		}()

		return application.RunDaemon(ctx)
	default:
		return fmt.Errorf("unknown mode %q, want resolve or daemon", mode)
	}
}
