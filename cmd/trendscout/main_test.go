package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trendscout/trendscout/internal/platform/config"
)

func TestRun_UnknownMode(t *testing.T) {
	logger := zerolog.Nop()

	cfg := &config.Config{
		SQLitePath: filepath.Join(t.TempDir(), "trendscout.db"),
		LLMAPIKey:  config.LLMAPIKeyMock,
		OMDBAPIKey: "test-omdb-key",
	}

	err := run(context.Background(), cfg, &logger, "bogus")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
}
