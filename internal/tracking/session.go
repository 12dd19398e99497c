package tracking

import (
	"errors"
	"math"
	"time"

	"github.com/sstent/walktime-go/internal/geo"
	"github.com/sstent/walktime-go/internal/models"
)

var (
	ErrNoFix            = errors.New("no accepted GPS fix during walk")
	ErrWalkTooShort     = errors.New("walk too short to record")
	ErrImplausibleSpeed = errors.New("average speed outside walking range")
)

// Outcome classifies what a position sample did to the session.
type Outcome string

const (
	OutcomeLowAccuracy    Outcome = "low_accuracy"
	OutcomeFirstFix       Outcome = "first_fix"
	OutcomeNoise          Outcome = "noise"
	OutcomeSpeedDiscarded Outcome = "speed_discarded"
	OutcomeAccepted       Outcome = "accepted"
)

// Session is the transient state of one walk in progress.
type Session struct {
	ID              string
	StartTime       time.Time
	LastPosition    *models.Position
	SpeedBuffer     []float64
	TotalDistanceKm float64
	RouteDistanceKm float64 // 0 when no route is planned
}

// NewSession starts an empty session at start.
func NewSession(id string, start time.Time, routeDistanceKm float64) *Session {
	return &Session{
		ID:              id,
		StartTime:       start,
		RouteDistanceKm: routeDistanceKm,
	}
}

// Update carries the observables produced by one sample.
type Update struct {
	Outcome         Outcome `json:"outcome"`
	SegmentKm       float64 `json:"segment_km"`
	InstantSpeed    float64 `json:"instant_speed_kmh"`
	TotalDistanceKm float64 `json:"total_distance_km"`

	// Set only when the sample entered the speed buffer.
	SmoothedSpeed *float64 `json:"smoothed_speed_kmh,omitempty"`

	// Set only when a route distance is known and SmoothedSpeed is set.
	RemainingDistanceKm *float64 `json:"remaining_distance_km,omitempty"`
	RemainingMinutes    *float64 `json:"remaining_minutes,omitempty"`
}

// Apply runs one raw GPS fix through the filter and mutates the session.
func (s *Session) Apply(cfg Config, p models.Position) Update {
	if p.Accuracy > cfg.MaxAccuracyMeters {
		return Update{Outcome: OutcomeLowAccuracy, TotalDistanceKm: s.TotalDistanceKm}
	}

	if s.LastPosition == nil {
		s.setLast(p)
		return Update{Outcome: OutcomeFirstFix, TotalDistanceKm: s.TotalDistanceKm}
	}

	last := s.LastPosition
	distance := geo.HaversineKm(last.Lat, last.Lng, p.Lat, p.Lng)
	hours := p.Timestamp.Sub(last.Timestamp).Hours()

	update := Update{Outcome: OutcomeNoise, SegmentKm: distance}

	if distance > cfg.MinMoveKm && hours > 0 {
		instant := distance / hours
		update.InstantSpeed = instant

		plausible := instant > cfg.MinInstantSpeed && instant < cfg.MaxInstantSpeed
		if plausible || !cfg.DropImplausibleDistance {
			s.TotalDistanceKm += distance
		}

		if plausible {
			smoothed := s.pushSpeed(cfg.SpeedWindow, instant)
			update.Outcome = OutcomeAccepted
			update.SmoothedSpeed = &smoothed

			if s.RouteDistanceKm > 0 {
				remaining := math.Max(0, s.RouteDistanceKm-s.TotalDistanceKm)
				minutes := (remaining / smoothed) * 60
				update.RemainingDistanceKm = &remaining
				update.RemainingMinutes = &minutes
			}
		} else {
			update.Outcome = OutcomeSpeedDiscarded
		}
	}

	s.setLast(p)
	update.TotalDistanceKm = s.TotalDistanceKm
	return update
}

// pushSpeed appends to the FIFO buffer and returns the buffer mean.
func (s *Session) pushSpeed(window int, v float64) float64 {
	s.SpeedBuffer = append(s.SpeedBuffer, v)
	if len(s.SpeedBuffer) > window {
		s.SpeedBuffer = s.SpeedBuffer[len(s.SpeedBuffer)-window:]
	}
	return s.SmoothedSpeed()
}

// SmoothedSpeed is the mean of the speed buffer, 0 when empty.
func (s *Session) SmoothedSpeed() float64 {
	if len(s.SpeedBuffer) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.SpeedBuffer {
		sum += v
	}
	return sum / float64(len(s.SpeedBuffer))
}

func (s *Session) setLast(p models.Position) {
	s.LastPosition = &p
}

// Finalize turns the session into a walk record ending at end. A non-nil
// error explains why no record was produced.
func (s *Session) Finalize(cfg Config, end time.Time, terrain float64, route string) (*models.WalkRecord, error) {
	hours := end.Sub(s.StartTime).Hours()

	if s.LastPosition == nil {
		return nil, ErrNoFix
	}
	if s.TotalDistanceKm <= cfg.MinWalkKm {
		return nil, ErrWalkTooShort
	}

	avg := s.TotalDistanceKm / hours
	if !(avg > cfg.MinWalkSpeed && avg < cfg.MaxWalkSpeed) {
		return nil, ErrImplausibleSpeed
	}

	return &models.WalkRecord{
		ID:       end.UnixMilli(),
		Date:     end.Format("2006-01-02"),
		Time:     end.Format("15:04:05"),
		Route:    route,
		Speed:    avg,
		Distance: s.TotalDistanceKm,
		Duration: hours * 60,
		Terrain:  terrain,
	}, nil
}
