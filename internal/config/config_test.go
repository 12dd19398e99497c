package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"DATA_DIR", "DB_PATH", "HTTP_ADDR", "LOG_LEVEL", "DIRECTIONS_URL", "GEOCODER_URL",
	"DIRECTIONS_TIMEOUT", "IMPORT_SCHEDULE", "EXPORT_SCHEDULE", "TRACKING_DROP_IMPLAUSIBLE_DISTANCE",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("./data", "walktime.db"), cfg.DBPath)
	assert.Equal(t, ":8888", cfg.HTTPAddr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "https://router.project-osrm.org", cfg.DirectionsURL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocoderURL)
	assert.Equal(t, 10*time.Second, cfg.DirectionsTimeout)
	assert.Equal(t, "@hourly", cfg.ImportSchedule)
	assert.Equal(t, "@daily", cfg.ExportSchedule)
	assert.False(t, cfg.DropImplausibleDistance)
	assert.Equal(t, filepath.Join("./data", "imports"), cfg.ImportDir())
	assert.Equal(t, filepath.Join("./data", "exports"), cfg.ExportDir())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/srv/walktime")
	t.Setenv("DIRECTIONS_TIMEOUT", "3s")
	t.Setenv("IMPORT_SCHEDULE", "")
	t.Setenv("TRACKING_DROP_IMPLAUSIBLE_DISTANCE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/srv/walktime/walktime.db", cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.DirectionsTimeout)
	assert.Empty(t, cfg.ImportSchedule)
	assert.True(t, cfg.DropImplausibleDistance)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "DIRECTIONS_TIMEOUT", "ten seconds"},
		{"negative duration", "DIRECTIONS_TIMEOUT", "-1s"},
		{"bad bool", "TRACKING_DROP_IMPLAUSIBLE_DISTANCE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9999\nLOG_LEVEL=DEBUG\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	cfg, found, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, ":8888", cfg.HTTPAddr)
}
