// Package config reads service settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir           string
	DBPath            string
	HTTPAddr          string
	LogLevel          string
	DirectionsURL     string
	GeocoderURL       string
	DirectionsTimeout time.Duration
	ImportSchedule    string
	ExportSchedule    string

	DropImplausibleDistance bool
}

// Load applies .env (when present) and reads the environment. The returned
// bool reports whether a .env file was found.
func Load(envFiles ...string) (*Config, bool, error) {
	found := true
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to read .env: %w", err)
		}
		found = false
	}

	cfg, err := FromEnv()
	return cfg, found, err
}

// FromEnv reads the configuration from environment variables only.
func FromEnv() (*Config, error) {
	dataDir := getenv("DATA_DIR", "./data")

	cfg := &Config{
		DataDir:        dataDir,
		DBPath:         getenv("DB_PATH", filepath.Join(dataDir, "walktime.db")),
		HTTPAddr:       getenv("HTTP_ADDR", ":8888"),
		LogLevel:       getenv("LOG_LEVEL", "INFO"),
		DirectionsURL:  getenv("DIRECTIONS_URL", "https://router.project-osrm.org"),
		GeocoderURL:    getenv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		ImportSchedule: lookup("IMPORT_SCHEDULE", "@hourly"),
		ExportSchedule: lookup("EXPORT_SCHEDULE", "@daily"),
	}

	var err error
	cfg.DirectionsTimeout, err = time.ParseDuration(getenv("DIRECTIONS_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTIONS_TIMEOUT: %w", err)
	}
	if cfg.DirectionsTimeout <= 0 {
		return nil, fmt.Errorf("invalid DIRECTIONS_TIMEOUT: must be positive")
	}

	cfg.DropImplausibleDistance, err = strconv.ParseBool(getenv("TRACKING_DROP_IMPLAUSIBLE_DISTANCE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKING_DROP_IMPLAUSIBLE_DISTANCE: %w", err)
	}

	return cfg, nil
}

// ImportDir is the inbox scanned for GPX/FIT traces.
func (c *Config) ImportDir() string {
	return filepath.Join(c.DataDir, "imports")
}

// ExportDir receives scheduled CSV snapshots.
func (c *Config) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lookup distinguishes an explicitly empty variable from an unset one, so a
// schedule can be disabled with KEY="".
func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
