package speed

import (
	"math"

	"github.com/sstent/walktime-go/internal/models"
)

// Stats summarizes the walk history.
type Stats struct {
	TotalWalks      int     `json:"total_walks"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	AverageSpeedKmh float64 `json:"average_speed_kmh"`
}

// Summarize aggregates the history into Stats.
func Summarize(history []models.WalkRecord) Stats {
	stats := Stats{
		TotalWalks:      len(history),
		AverageSpeedKmh: RecentAverage(history),
	}
	for _, walk := range history {
		stats.TotalDistanceKm += walk.Distance
	}
	return stats
}

// Comparison contrasts a provider's route duration with the personal projection.
type Comparison struct {
	DistanceKm        float64 `json:"distance_km"`
	ProviderMinutes   float64 `json:"provider_minutes"`
	PersonalMinutes   float64 `json:"personal_minutes"`
	DifferenceMinutes float64 `json:"difference_minutes"` // provider - personal
	PercentDifference float64 `json:"percent_difference"`
	Faster            bool    `json:"faster"`
	PersonalSpeedKmh  float64 `json:"personal_speed_kmh"`
}

// Compare projects a planned route at the given personal speed.
func Compare(route models.Route, personalSpeed float64) Comparison {
	personal := ProjectedMinutes(route.DistanceKm, personalSpeed)
	diff := route.DurationMinutes - personal

	cmp := Comparison{
		DistanceKm:        route.DistanceKm,
		ProviderMinutes:   route.DurationMinutes,
		PersonalMinutes:   personal,
		DifferenceMinutes: diff,
		Faster:            diff > 0,
		PersonalSpeedKmh:  personalSpeed,
	}
	if route.DurationMinutes > 0 {
		cmp.PercentDifference = math.Abs(diff) / route.DurationMinutes * 100
	}
	return cmp
}
