// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LLMAPIKeyMock selects the deterministic mock LLM client.
const LLMAPIKeyMock = "mock"

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./trendscout.db"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	// LLM capability
	LLMAPIKey       string        `env:"LLM_API_KEY,required"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMRateLimitRPS float64       `env:"LLM_RATE_LIMIT_RPS" envDefault:"1"`

	// Catalog lookup (OMDb)
	OMDBAPIKey          string        `env:"OMDB_API_KEY,required"`
	OMDBBaseURL         string        `env:"OMDB_BASE_URL" envDefault:"https://www.omdbapi.com/"`
	OMDBTimeout         time.Duration `env:"OMDB_TIMEOUT" envDefault:"15s"`
	OMDBRateLimitRPS    float64       `env:"OMDB_RATE_LIMIT_RPS" envDefault:"1"`
	LookupMaxAttempts   int           `env:"LOOKUP_MAX_ATTEMPTS" envDefault:"3"`
	LookupInitialDelay  time.Duration `env:"LOOKUP_INITIAL_DELAY" envDefault:"500ms"`
	LookupRetryAfterCap time.Duration `env:"LOOKUP_RETRY_AFTER_CAP" envDefault:"30s"`

	// Normalization
	NormalizeMaxLen int `env:"NORMALIZE_MAX_LEN" envDefault:"256"`

	// Trend sources
	Sources             []string      `env:"SOURCES" envSeparator:"," envDefault:"reddit,tmdb,twitter"`
	SourceTimeout       time.Duration `env:"SOURCE_TIMEOUT" envDefault:"15s"`
	MaxItemsPerSource   int           `env:"MAX_ITEMS_PER_SOURCE" envDefault:"25"`
	RedditFeedURL       string        `env:"REDDIT_FEED_URL" envDefault:"https://www.reddit.com/r/movies/hot/.rss"`
	TMDBAPIKey          string        `env:"TMDB_API_KEY"`
	TMDBBaseURL         string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	TwitterTrendsURL    string        `env:"TWITTER_TRENDS_URL" envDefault:"https://trends24.in/united-states/"`
	GoogleTrendsCSVPath string        `env:"GOOGLE_TRENDS_CSV_PATH"`
	GoogleTrendsMaxAge  time.Duration `env:"GOOGLE_TRENDS_MAX_AGE" envDefault:"168h"`

	// Link context enrichment
	LinkContextEnabled  bool          `env:"LINK_CONTEXT_ENABLED" envDefault:"false"`
	LinkContextTimeout  time.Duration `env:"LINK_CONTEXT_TIMEOUT" envDefault:"15s"`
	LinkContextMaxChars int           `env:"LINK_CONTEXT_MAX_CHARS" envDefault:"1200"`

	// Daemon mode
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.LookupMaxAttempts < 1 {
		return fmt.Errorf("LOOKUP_MAX_ATTEMPTS must be at least 1, got %d", c.LookupMaxAttempts)
	}

	if c.NormalizeMaxLen < 1 {
		return fmt.Errorf("NORMALIZE_MAX_LEN must be at least 1, got %d", c.NormalizeMaxLen)
	}

	for _, s := range c.Sources {
		switch strings.TrimSpace(s) {
		case "reddit", "tmdb", "twitter", "google_trends", "fallback":
		default:
			return fmt.Errorf("unknown source %q in SOURCES", s)
		}
	}

	return nil
}

// SourceEnabled reports whether the named source is configured.
func (c *Config) SourceEnabled(name string) bool {
	for _, s := range c.Sources {
		if strings.TrimSpace(s) == name {
			return true
		}
	}

	return false
}
