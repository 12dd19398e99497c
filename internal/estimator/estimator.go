// Package estimator holds the application state of a walktime instance: the
// learned speed profile, the live tracker and the currently planned route.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sstent/walktime-go/internal/directions"
	"github.com/sstent/walktime-go/internal/logger"
	"github.com/sstent/walktime-go/internal/metrics"
	"github.com/sstent/walktime-go/internal/models"
	"github.com/sstent/walktime-go/internal/profile"
	"github.com/sstent/walktime-go/internal/speed"
	"github.com/sstent/walktime-go/internal/tracking"
)

// RecentLimit is the number of walks shown in the history view.
const RecentLimit = 15

var (
	ErrMissingEndpoints = errors.New("please enter both start and end locations")
	ErrInvalidDistance  = errors.New("distance must be a non-negative number")
)

// Plan is the last successfully calculated route.
type Plan struct {
	Start    string           `json:"start"`
	End      string           `json:"end"`
	Route    models.Route     `json:"route"`
	Analysis speed.Comparison `json:"analysis"`
	Terrain  string           `json:"terrain"`
}

// Projection is a travel-time estimate at the personal speed.
type Projection struct {
	DistanceKm float64 `json:"distance_km"`
	SpeedKmh   float64 `json:"speed_kmh"`
	Minutes    float64 `json:"minutes"`
}

// WalkResult reports what happened to a finished tracking session or an
// imported trace.
type WalkResult struct {
	SessionID       string             `json:"session_id"`
	Recorded        bool               `json:"recorded"`
	Walk            *models.WalkRecord `json:"walk,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	TotalDistanceKm float64            `json:"total_distance_km"`
	PersonalSpeed   float64            `json:"personal_speed_kmh"`
}

type Estimator struct {
	// mu serializes writers so history order follows completion order.
	mu         sync.Mutex
	profile    *profile.Profile
	tracker    *tracking.Tracker
	directions directions.Provider
	log        logger.Logger
	now        func() time.Time
	plan       *Plan
}

func New(p *profile.Profile, tracker *tracking.Tracker, provider directions.Provider, log logger.Logger) *Estimator {
	return &Estimator{
		profile:    p,
		tracker:    tracker,
		directions: provider,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock used for snapshots.
func (e *Estimator) WithClock(now func() time.Time) *Estimator {
	e.now = now
	return e
}

func (e *Estimator) Settings() models.UserSettings {
	return e.profile.Settings()
}

func (e *Estimator) UpdateSettings(ctx context.Context, s models.UserSettings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.profile.UpdateSettings(ctx, s); err != nil {
		return err
	}
	e.log.Info(ctx, "settings updated", "average_speed", s.AverageSpeed, "terrain_factor", s.TerrainFactor)
	return nil
}

func (e *Estimator) PersonalSpeed() float64 {
	return e.profile.PersonalSpeed()
}

// Estimate projects the walking time for a distance at the personal speed.
func (e *Estimator) Estimate(distanceKm float64) (Projection, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return Projection{}, ErrInvalidDistance
	}

	v := e.PersonalSpeed()
	return Projection{
		DistanceKm: distanceKm,
		SpeedKmh:   v,
		Minutes:    speed.ProjectedMinutes(distanceKm, v),
	}, nil
}

// PlanRoute asks the directions provider for a walking route and compares
// its duration with the personal projection. A failed lookup leaves the
// previous plan in place.
func (e *Estimator) PlanRoute(ctx context.Context, start, end string) (Plan, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return Plan{}, ErrMissingEndpoints
	}

	route, err := e.directions.Route(ctx, start, end)
	if err != nil {
		e.log.Warn(ctx, "route calculation failed", "status", string(directions.StatusOf(err)), "error", err.Error())
		return Plan{}, err
	}

	plan := Plan{
		Start:    start,
		End:      end,
		Route:    route,
		Analysis: speed.Compare(route, e.PersonalSpeed()),
		Terrain:  speed.TerrainDescription(e.Settings().TerrainFactor),
	}

	e.mu.Lock()
	e.plan = &plan
	e.mu.Unlock()

	e.tracker.SetRouteDistance(route.DistanceKm)
	e.log.Info(ctx, "route planned", "distance_km", route.DistanceKm, "provider_minutes", route.DurationMinutes)
	return plan, nil
}

// CurrentPlan returns the active plan, if any.
func (e *Estimator) CurrentPlan() (Plan, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.plan == nil {
		return Plan{}, false
	}
	return *e.plan, true
}

func (e *Estimator) StartWalk(ctx context.Context) (tracking.Status, error) {
	e.mu.Lock()
	routeKm := 0.0
	if e.plan != nil {
		routeKm = e.plan.Route.DistanceKm
	}
	e.mu.Unlock()

	status, err := e.tracker.Start(routeKm)
	if err != nil {
		return status, err
	}

	metrics.SetTracking(true)
	e.log.Info(logger.WithSessionID(ctx, status.SessionID), "walk tracking started", "route_distance_km", routeKm)
	return status, nil
}

// RecordPosition feeds one fix from the client's position source.
func (e *Estimator) RecordPosition(ctx context.Context, p models.Position) (tracking.Update, error) {
	update, err := e.tracker.Sample(p)
	if err != nil {
		return update, err
	}

	metrics.RecordSample(string(update.Outcome))
	if update.Outcome != tracking.OutcomeAccepted {
		e.log.Debug(ctx, "position sample not used for speed",
			"outcome", string(update.Outcome), "accuracy", p.Accuracy, "instant_speed_kmh", update.InstantSpeed)
	}
	return update, nil
}

// StopWalk finalizes the running session. A walk that fails the acceptance
// rules is reported with Recorded=false and a reason, not as an error.
func (e *Estimator) StopWalk(ctx context.Context) (WalkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, record, err := e.tracker.Stop(e.profile.Settings().TerrainFactor, e.describeLocked())
	if errors.Is(err, tracking.ErrNotTracking) {
		return WalkResult{}, err
	}
	metrics.SetTracking(false)

	ctx = logger.WithSessionID(ctx, session.ID)
	result := WalkResult{
		SessionID:       session.ID,
		TotalDistanceKm: session.TotalDistanceKm,
	}

	if err != nil {
		metrics.RecordWalk(metrics.ResultDiscarded)
		e.log.Info(ctx, "walk not recorded", "reason", err.Error(), "distance_km", session.TotalDistanceKm)
		result.Reason = err.Error()
		result.PersonalSpeed = e.profile.PersonalSpeed()
		return result, nil
	}

	result.Walk = record
	result.Recorded = true
	if err := e.appendLocked(ctx, *record, metrics.ResultRecorded); err != nil {
		result.PersonalSpeed = e.profile.PersonalSpeed()
		return result, err
	}
	result.PersonalSpeed = e.profile.PersonalSpeed()
	return result, nil
}

// LocationFailed handles a failure reported by the position source. Any
// running session is discarded and the categorized error is returned.
func (e *Estimator) LocationFailed(ctx context.Context, code tracking.GeolocationCode) error {
	geoErr := &tracking.GeolocationError{Code: code}

	session := e.tracker.Abort()
	metrics.SetTracking(false)
	if session != nil {
		ctx = logger.WithSessionID(ctx, session.ID)
		metrics.RecordWalk(metrics.ResultAborted)
	}
	e.log.Warn(ctx, "position source failed, tracking stopped", "code", code.String(), "had_session", session != nil)
	return geoErr
}

func (e *Estimator) TrackingStatus() tracking.Status {
	return e.tracker.Status()
}

// ImportTrace replays a recorded trace through the tracking filter and keeps
// the walk when it passes the same rules as a live one.
func (e *Estimator) ImportTrace(ctx context.Context, name string, positions []models.Position) (WalkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	replay, err := tracking.Replay(e.tracker.Config(), positions, e.profile.Settings().TerrainFactor, e.describeLocked())
	if errors.Is(err, tracking.ErrEmptyTrace) {
		return WalkResult{}, fmt.Errorf("%s: %w", name, err)
	}

	ctx = logger.WithSessionID(ctx, replay.Session.ID)
	result := WalkResult{
		SessionID:       replay.Session.ID,
		TotalDistanceKm: replay.Session.TotalDistanceKm,
	}
	for outcome, n := range replay.Outcomes {
		metrics.PositionSamplesTotal.WithLabelValues(string(outcome)).Add(float64(n))
	}

	if err != nil {
		metrics.RecordWalk(metrics.ResultDiscarded)
		e.log.Info(ctx, "imported trace not recorded", "file", name, "reason", err.Error())
		result.Reason = err.Error()
		result.PersonalSpeed = e.profile.PersonalSpeed()
		return result, nil
	}

	result.Walk = replay.Walk
	result.Recorded = true
	err = e.appendLocked(ctx, *replay.Walk, metrics.ResultImported)
	result.PersonalSpeed = e.profile.PersonalSpeed()
	return result, err
}

func (e *Estimator) appendLocked(ctx context.Context, walk models.WalkRecord, result string) error {
	metrics.RecordWalk(result)
	if err := e.profile.Append(ctx, walk); err != nil {
		e.log.Error(ctx, "failed to save walk", err, "walk_id", walk.ID)
		return err
	}
	e.log.Info(ctx, "walk recorded",
		"walk_id", walk.ID, "distance_km", walk.Distance, "speed_kmh", walk.Speed, "duration_min", walk.Duration)
	return nil
}

// describeLocked labels a new walk from the planned endpoints, or with a
// sequence number when no route is planned.
func (e *Estimator) describeLocked() string {
	if e.plan != nil && e.plan.Start != "" && e.plan.End != "" {
		return shortenAddress(e.plan.Start) + " → " + shortenAddress(e.plan.End)
	}
	return fmt.Sprintf("Walk %d", e.profile.Len()+1)
}

func shortenAddress(address string) string {
	first, _, _ := strings.Cut(address, ",")
	r := []rune(first)
	if len(r) > 20 {
		return string(r[:17]) + "..."
	}
	return first
}
