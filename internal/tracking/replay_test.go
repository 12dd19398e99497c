package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/walktime-go/internal/models"
)

func TestReplay(t *testing.T) {
	t.Run("empty trace", func(t *testing.T) {
		_, err := Replay(DefaultConfig(), nil, 1.0, "Walk 1")
		assert.ErrorIs(t, err, ErrEmptyTrace)
	})

	t.Run("steady walk is recorded", func(t *testing.T) {
		// 100 m every 75 s = 4.8 km/h for 25 minutes
		var trace []models.Position
		lat := 46.0
		for i := 0; i <= 20; i++ {
			trace = append(trace, fix(lat, time.Duration(i)*75*time.Second, 0))
			lat += kmNorth(0.1)
		}

		result, err := Replay(DefaultConfig(), trace, 1.0, "Walk 3")
		require.NoError(t, err)
		require.NotNil(t, result.Walk)

		assert.InDelta(t, 2.0, result.Walk.Distance, 0.001)
		assert.InDelta(t, 4.8, result.Walk.Speed, 0.01)
		assert.InDelta(t, 25.0, result.Walk.Duration, 1e-9)
		assert.Equal(t, "Walk 3", result.Walk.Route)
		assert.Equal(t, 1, result.Outcomes[OutcomeFirstFix])
		assert.Equal(t, 20, result.Outcomes[OutcomeAccepted])
	})

	t.Run("stationary trace is discarded", func(t *testing.T) {
		trace := []models.Position{
			fix(46.0, 0, 0),
			fix(46.0, time.Minute, 0),
			fix(46.0, 2*time.Minute, 0),
		}
		result, err := Replay(DefaultConfig(), trace, 1.0, "Walk 1")
		assert.ErrorIs(t, err, ErrWalkTooShort)
		assert.Nil(t, result.Walk)
		assert.Equal(t, 2, result.Outcomes[OutcomeNoise])
	})
}
