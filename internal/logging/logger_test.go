package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raceday/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raceday.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "run_id")
}

func TestNewEmptyFileDisablesLogging(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info"})
	require.NoError(t, err)
	logger.Info("dropped")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud", File: "raceday.log"})
	assert.Error(t, err)
}

func TestNewTextFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raceday.log")
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "text", File: path})
	require.NoError(t, err)

	logger.Debug("visible at debug")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible at debug")
}
