package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
		wantErr  bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"trace", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func restoreGlobalLogger(t *testing.T) {
	prev, prevLevel, prevCtx := zlog.Logger, zerolog.GlobalLevel(), zerolog.DefaultContextLogger
	t.Cleanup(func() {
		zlog.Logger = prev
		zerolog.DefaultContextLogger = prevCtx
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_File(t *testing.T) {
	restoreGlobalLogger(t)
	path := filepath.Join(t.TempDir(), "logs", "jarvis.log")

	closer, err := Setup(Config{Level: "debug", File: path})
	require.NoError(t, err)

	zlog.Debug().Str("intent", "RUN_TESTS").Msg("intent classified")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "intent classified")
	assert.Contains(t, string(data), "intent=RUN_TESTS")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetup_LevelFilters(t *testing.T) {
	restoreGlobalLogger(t)
	path := filepath.Join(t.TempDir(), "jarvis.log")

	closer, err := Setup(Config{Level: "warn", File: path})
	require.NoError(t, err)

	zlog.Info().Msg("hidden")
	zlog.Warn().Msg("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreGlobalLogger(t)
	_, err := Setup(Config{Level: "loud"})
	assert.Error(t, err)
}
