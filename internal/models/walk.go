package models

// WalkRecord is one completed walk as stored in the speed history.
type WalkRecord struct {
	ID       int64   `json:"id"`   // creation time, unix milliseconds
	Date     string  `json:"date"` // 2006-01-02
	Time     string  `json:"time"` // 15:04:05
	Route    string  `json:"route"`
	Speed    float64 `json:"speed"`    // km/h
	Distance float64 `json:"distance"` // km
	Duration float64 `json:"duration"` // minutes
	Terrain  float64 `json:"terrain"`
}

const (
	DefaultAverageSpeed  = 5.5 // km/h
	DefaultTerrainFactor = 1.0
)

// UserSettings is the manually configured walking baseline.
type UserSettings struct {
	AverageSpeed  float64 `json:"averageSpeed"`
	TerrainFactor float64 `json:"terrainFactor"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		AverageSpeed:  DefaultAverageSpeed,
		TerrainFactor: DefaultTerrainFactor,
	}
}
