package models

import "time"

// Position is a single GPS fix.
type Position struct {
	Lat       float64
	Lng       float64
	Timestamp time.Time
	Accuracy  float64 // meters, 0 when unknown
}

// Route is the narrow shape consumed from a directions provider.
type Route struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}
