// Package app provides the main application bootstrap and runtime
// orchestration.
//
// The App type wires together all dependencies and exposes two
// operational modes:
//
//   - Resolve mode: one fetch-and-resolve batch, then exit
//   - Daemon mode: periodic batches plus the health and metrics server
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/trendscout/trendscout/internal/catalog"
	"github.com/trendscout/trendscout/internal/core/domain"
	"github.com/trendscout/trendscout/internal/core/llm"
	"github.com/trendscout/trendscout/internal/platform/config"
	"github.com/trendscout/trendscout/internal/platform/observability"
	"github.com/trendscout/trendscout/internal/platform/worker"
	"github.com/trendscout/trendscout/internal/process/normalize"
	"github.com/trendscout/trendscout/internal/process/pipeline"
	"github.com/trendscout/trendscout/internal/source"
	db "github.com/trendscout/trendscout/internal/storage"
)

// ErrItemsFailed marks a run in which at least one item ended in ERROR
// status. Callers map it to a non-zero exit code.
var ErrItemsFailed = errors.New("some trend items failed")

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunResolve runs one fetch-and-resolve batch. It returns
// ErrItemsFailed when any item ended in ERROR status.
func (a *App) RunResolve(ctx context.Context) error {
	a.logger.Info().Msg("Starting resolve batch")

	summary := a.runBatch(ctx, a.newPipeline())

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("resolve batch interrupted: %w", err)
	}

	if summary.HasErrors() {
		return ErrItemsFailed
	}

	return nil
}

// RunDaemon runs batches on the configured poll interval until the
// context is canceled. Individual batch errors are logged and the next
// tick proceeds.
func (a *App) RunDaemon(ctx context.Context) error {
	a.logger.Info().Dur("poll_interval", a.cfg.WorkerPollInterval).Msg("Starting daemon mode")

	p := a.newPipeline()

	return worker.Loop(ctx, worker.Config{
		Name:         "trend-resolve",
		PollInterval: a.cfg.WorkerPollInterval,
		Logger:       a.logger,
		Process: func(ctx context.Context) error {
			summary := a.runBatch(ctx, p)
			if summary.HasErrors() {
				a.logger.Warn().Int("errors", summary.Counts[domain.StatusErrored]).Msg("batch had item errors")
			}

			return nil
		},
	})
}

func (a *App) runBatch(ctx context.Context, p *pipeline.Pipeline) pipeline.Summary {
	adapters := a.newAdapters()

	items := source.FetchAll(ctx, adapters, a.cfg.SourceTimeout, a.cfg.MaxItemsPerSource, a.logger)

	if len(items) == 0 {
		a.logger.Warn().Msg("no items from configured sources, using fallback keywords")

		items = source.FetchAll(ctx, []source.Adapter{source.NewFallback()}, a.cfg.SourceTimeout, a.cfg.MaxItemsPerSource, a.logger)
	}

	if a.cfg.LinkContextEnabled {
		enricher := source.NewLinkEnricher(a.cfg.LinkContextTimeout, a.cfg.LinkContextMaxChars, a.logger)
		enricher.Enrich(items)
	}

	return p.Run(ctx, items)
}

func (a *App) newPipeline() *pipeline.Pipeline {
	cfg := pipeline.Config{
		LLMTimeout: a.cfg.LLMTimeout,
		Retry: catalog.RetryConfig{
			MaxAttempts:   a.cfg.LookupMaxAttempts,
			InitialDelay:  a.cfg.LookupInitialDelay,
			RetryAfterCap: a.cfg.LookupRetryAfterCap,
		},
	}

	return pipeline.New(
		cfg,
		normalize.New(a.cfg.NormalizeMaxLen),
		a.newLLMClient(),
		a.newSearcher(),
		a.database,
		a.logger,
	)
}

// newAdapters assembles the enabled trend sources. A source missing its
// own configuration is skipped with a warning rather than failing the
// run.
func (a *App) newAdapters() []source.Adapter {
	var adapters []source.Adapter

	if a.cfg.SourceEnabled(domain.SourceReddit) {
		adapters = append(adapters, source.NewReddit(a.cfg.RedditFeedURL))
	}

	if a.cfg.SourceEnabled("tmdb") {
		if a.cfg.TMDBAPIKey != "" {
			adapters = append(adapters, source.NewTMDB(a.cfg.TMDBAPIKey, a.cfg.TMDBBaseURL))
		} else {
			a.logger.Warn().Msg("tmdb source enabled but TMDB_API_KEY is empty, skipping")
		}
	}

	if a.cfg.SourceEnabled(domain.SourceTwitter) {
		adapters = append(adapters, source.NewTwitter(a.cfg.TwitterTrendsURL))
	}

	if a.cfg.SourceEnabled(domain.SourceGoogleTrends) {
		if a.cfg.GoogleTrendsCSVPath != "" {
			adapters = append(adapters, source.NewGoogleTrends(a.cfg.GoogleTrendsCSVPath, a.cfg.GoogleTrendsMaxAge))
		} else {
			a.logger.Warn().Msg("google_trends source enabled but GOOGLE_TRENDS_CSV_PATH is empty, skipping")
		}
	}

	if a.cfg.SourceEnabled(domain.SourceFallback) {
		adapters = append(adapters, source.NewFallback())
	}

	return adapters
}

// newLLMClient creates the LLM client, or the deterministic mock when
// the key selects it.
func (a *App) newLLMClient() llm.Client {
	if a.cfg.LLMAPIKey == config.LLMAPIKeyMock {
		a.logger.Info().Msg("using mock LLM client")

		return llm.NewMock()
	}

	return llm.NewOpenAI(a.cfg, a.logger)
}

func (a *App) newSearcher() catalog.Searcher {
	client, err := catalog.NewClient(
		a.cfg.OMDBAPIKey,
		a.cfg.OMDBBaseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: a.cfg.OMDBTimeout}),
		catalog.WithRateLimit(a.cfg.OMDBRateLimitRPS),
	)
	if err != nil {
		// Config validation runs before App construction, so this only
		// trips on an empty key, which Load already rejects.
		a.logger.Fatal().Err(err).Msg("catalog client init failed")
	}

	return client
}
