package tracking

// Config holds the live filter thresholds.
type Config struct {
	// Sample quality
	MaxAccuracyMeters float64 // fixes coarser than this are dropped
	MinMoveKm         float64 // movement at or below this is GPS noise

	// Instant speed window, exclusive bounds in km/h
	MinInstantSpeed float64
	MaxInstantSpeed float64
	SpeedWindow     int // number of instant speeds kept for smoothing

	// Walk acceptance
	MinWalkKm    float64 // exclusive
	MinWalkSpeed float64 // exclusive, km/h
	MaxWalkSpeed float64 // exclusive, km/h

	// DropImplausibleDistance also discards the segment distance when the
	// instant speed falls outside the instant speed window.
	DropImplausibleDistance bool
}

// DefaultConfig returns the thresholds used for live walks.
func DefaultConfig() Config {
	return Config{
		MaxAccuracyMeters: 50,
		MinMoveKm:         0.001,
		MinInstantSpeed:   0.5,
		MaxInstantSpeed:   15,
		SpeedWindow:       10,
		MinWalkKm:         0.1,
		MinWalkSpeed:      1,
		MaxWalkSpeed:      15,
	}
}
