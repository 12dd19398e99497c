// Package profile owns the walk history and the user's manual settings and
// keeps both in local storage.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sstent/walktime-go/internal/database"
	"github.com/sstent/walktime-go/internal/logger"
	"github.com/sstent/walktime-go/internal/models"
	"github.com/sstent/walktime-go/internal/speed"
)

const (
	HistoryKey  = "walkingSpeedData"
	SettingsKey = "walkingUserSettings"
)

var ErrInvalidSettings = errors.New("average speed and terrain factor must be positive")

// Storage is a key -> JSON blob store.
type Storage interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
}

// Profile is the single writer of the speed history. The history is
// append-only; entries are never modified after they are added.
type Profile struct {
	mu       sync.RWMutex
	store    Storage
	log      logger.Logger
	history  []models.WalkRecord
	settings models.UserSettings
}

// Load reads history and settings once. Missing or malformed blobs fall back
// to an empty history and default settings.
func Load(ctx context.Context, store Storage, log logger.Logger) *Profile {
	p := &Profile{
		store:    store,
		log:      log,
		settings: models.DefaultSettings(),
	}
	p.history = p.loadHistory(ctx)
	p.settings = p.loadSettings(ctx)
	return p
}

func (p *Profile) loadHistory(ctx context.Context) []models.WalkRecord {
	raw, ok := p.read(ctx, HistoryKey)
	if !ok {
		return nil
	}

	var history []models.WalkRecord
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		p.log.Warn(ctx, "could not load speed data, starting with empty history", "error", err.Error())
		return nil
	}
	return history
}

func (p *Profile) loadSettings(ctx context.Context) models.UserSettings {
	settings := models.DefaultSettings()

	raw, ok := p.read(ctx, SettingsKey)
	if !ok {
		return settings
	}

	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		p.log.Warn(ctx, "could not load user settings, using defaults", "error", err.Error())
		return models.DefaultSettings()
	}
	if err := validate(settings); err != nil {
		p.log.Warn(ctx, "stored user settings out of range, using defaults",
			"average_speed", settings.AverageSpeed, "terrain_factor", settings.TerrainFactor)
		return models.DefaultSettings()
	}
	return settings
}

func (p *Profile) read(ctx context.Context, key string) (string, bool) {
	raw, err := p.store.GetItem(key)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			p.log.Warn(ctx, "could not read local storage", "key", key, "error", err.Error())
		}
		return "", false
	}
	return raw, true
}

// History returns a copy of the walks, oldest first.
func (p *Profile) History() []models.WalkRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.WalkRecord, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Profile) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.history)
}

func (p *Profile) Settings() models.UserSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// PersonalSpeed is the speed model estimate for the current state.
func (p *Profile) PersonalSpeed() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return speed.Estimate(p.history, p.settings.AverageSpeed, p.settings.TerrainFactor)
}

// UpdateSettings replaces the manual baseline and persists it.
func (p *Profile) UpdateSettings(ctx context.Context, settings models.UserSettings) error {
	if err := validate(settings); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.settings = settings
	return p.saveSettingsLocked()
}

// Append adds a finished walk, persists the history and reseeds the manual
// baseline from the recent average. In-memory state is kept even when
// persisting fails.
func (p *Profile) Append(ctx context.Context, walk models.WalkRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.history = append(p.history, walk)
	if err := p.saveHistoryLocked(); err != nil {
		return err
	}

	p.settings.AverageSpeed = math.Round(speed.RecentAverage(p.history)*10) / 10
	return p.saveSettingsLocked()
}

// Clear removes every walk.
func (p *Profile) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.history = nil
	return p.saveHistoryLocked()
}

func (p *Profile) saveHistoryLocked() error {
	history := p.history
	if history == nil {
		history = []models.WalkRecord{}
	}
	return p.write(HistoryKey, history)
}

func (p *Profile) saveSettingsLocked() error {
	return p.write(SettingsKey, p.settings)
}

func (p *Profile) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.store.SetItem(key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func validate(s models.UserSettings) error {
	if !(s.AverageSpeed > 0) || !(s.TerrainFactor > 0) {
		return ErrInvalidSettings
	}
	return nil
}
