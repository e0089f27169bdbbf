package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raceday/internal/race"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "raceday.yaml")

	want := DefaultConfig()
	want.Race.Participants[0].Increment = 3
	want.Race.Participants[1].Delay = "250ms"
	want.UI.Theme = "dark"
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raceday.yaml")
	require.NoError(t, os.WriteFile(path, []byte("race: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RACEDAY_LOG_LEVEL", "debug")
	t.Setenv("RACEDAY_THEME", "light")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestGetDelay(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, ParticipantConfig{Delay: "250ms"}.GetDelay())
	assert.Equal(t, DefaultDelay, ParticipantConfig{}.GetDelay())
	assert.Equal(t, DefaultDelay, ParticipantConfig{Delay: "soon"}.GetDelay())
	assert.Equal(t, DefaultDelay, ParticipantConfig{Delay: "-1s"}.GetDelay())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Race.Participants = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Race.Participants[0].MaxProgress = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, race.ErrMaxProgress))

	cfg = DefaultConfig()
	cfg.Race.Participants[1].Increment = -2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.UI.Theme = "solarized"
	assert.Error(t, cfg.Validate())
}

func TestParticipantsBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Race.Participants[1].Name = ""

	participants, err := cfg.Participants()
	require.NoError(t, err)
	require.Len(t, participants, 2)

	assert.Equal(t, "Player 1", participants[0].Name)
	assert.Equal(t, "Player 2", participants[1].Name, "unnamed participants get positional names")
	assert.Equal(t, 100, participants[0].MaxProgress)
	assert.Equal(t, 500*time.Millisecond, participants[0].Delay)
	assert.Equal(t, 0, participants[0].Progress())
}
