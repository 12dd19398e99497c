package tracking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sstent/walktime-go/internal/models"
)

// State of the tracker.
type State string

const (
	StateIdle     State = "idle"
	StateTracking State = "tracking"
)

// Status is a read-only view of the tracker.
type Status struct {
	State           State     `json:"state"`
	SessionID       string    `json:"session_id,omitempty"`
	StartedAt       time.Time `json:"started_at,omitempty"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	SmoothedSpeed   float64   `json:"smoothed_speed_kmh"`
	RouteDistanceKm float64   `json:"route_distance_km"`
	Samples         int       `json:"speed_samples"`
}

// Tracker drives the Idle -> Tracking -> Idle lifecycle around a Session.
// Samples are applied one at a time.
type Tracker struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	session *Session
}

func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) Config() Config {
	return t.cfg
}

// Start opens a fresh session.
func (t *Tracker) Start(routeDistanceKm float64) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		return t.statusLocked(), wrapState("start", ErrAlreadyTracking)
	}

	t.session = NewSession(uuid.NewString(), t.now(), routeDistanceKm)
	return t.statusLocked(), nil
}

// Sample applies one fix to the running session.
func (t *Tracker) Sample(p models.Position) (Update, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return Update{}, wrapState("sample", ErrNotTracking)
	}
	return t.session.Apply(t.cfg, p), nil
}

// SetRouteDistance updates the target used for remaining-time observables.
func (t *Tracker) SetRouteDistance(km float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		t.session.RouteDistanceKm = km
	}
}

// Stop closes the session and finalizes it. The returned session is the
// closed one; the record is nil when the walk was not accepted, with the
// reason in err.
func (t *Tracker) Stop(terrain float64, route string) (*Session, *models.WalkRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, nil, wrapState("stop", ErrNotTracking)
	}

	session := t.session
	t.session = nil

	record, err := session.Finalize(t.cfg, t.now(), terrain, route)
	return session, record, err
}

// Abort drops the running session without finalizing it. It returns the
// discarded session, or nil when idle.
func (t *Tracker) Abort() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	session := t.session
	t.session = nil
	return session
}

func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

func (t *Tracker) statusLocked() Status {
	if t.session == nil {
		return Status{State: StateIdle}
	}
	return Status{
		State:           StateTracking,
		SessionID:       t.session.ID,
		StartedAt:       t.session.StartTime,
		TotalDistanceKm: t.session.TotalDistanceKm,
		SmoothedSpeed:   t.session.SmoothedSpeed(),
		RouteDistanceKm: t.session.RouteDistanceKm,
		Samples:         len(t.session.SpeedBuffer),
	}
}
