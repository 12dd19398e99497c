// Package speed derives a personalized walking speed from the walk history.
package speed

import (
	"math"

	"github.com/sstent/walktime-go/internal/models"
)

const (
	// MinSpeed keeps downstream time projections away from division by near-zero.
	MinSpeed = 1.0 // km/h

	// MinHistory is the number of walks needed before learned speed is used.
	MinHistory = 3

	recencyBase   = 1.1
	learnedWeight = 0.8
	baseWeight    = 0.2

	recentWindow = 5
)

// Estimate returns the personalized speed in km/h for the given history,
// manual baseline speed and terrain factor. The result is never below MinSpeed.
func Estimate(history []models.WalkRecord, baseSpeed, terrainFactor float64) float64 {
	if len(history) < MinHistory {
		return math.Max(MinSpeed, baseSpeed*terrainFactor)
	}

	blended := learnedWeight*LearnedSpeed(history) + baseWeight*baseSpeed
	return math.Max(MinSpeed, blended*terrainFactor)
}

// LearnedSpeed is the recency-weighted mean speed of all walks. The walk at
// index i (0 = oldest) is weighted by 1.1^i.
func LearnedSpeed(history []models.WalkRecord) float64 {
	if len(history) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	weight := 1.0
	for _, walk := range history {
		weightedSum += walk.Speed * weight
		totalWeight += weight
		weight *= recencyBase
	}
	return weightedSum / totalWeight
}

// RecentAverage is the plain mean speed over the last five walks, or the
// default baseline when there is no history.
func RecentAverage(history []models.WalkRecord) float64 {
	if len(history) == 0 {
		return models.DefaultAverageSpeed
	}

	recent := history
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	var sum float64
	for _, walk := range recent {
		sum += walk.Speed
	}
	return sum / float64(len(recent))
}

// ProjectedMinutes converts a distance at a speed into minutes.
// speedKmh must be positive.
func ProjectedMinutes(distanceKm, speedKmh float64) float64 {
	return (distanceKm / speedKmh) * 60
}
