package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, HaversineKm(24.8138, 120.9675, 24.8138, 120.9675))
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := HaversineKm(46.0, 7.0, 46.001, 7.001)
		ba := HaversineKm(46.001, 7.001, 46.0, 7.0)
		assert.InDelta(t, ab, ba, 1e-12)
	})

	t.Run("known distance", func(t *testing.T) {
		// roughly 140 m
		assert.InDelta(t, 0.140, HaversineKm(46.0, 7.0, 46.001, 7.001), 0.01)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.01)
	})
}
