package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestTracker_Lifecycle(t *testing.T) {
	clock := &fakeClock{now: t0}
	tracker := NewTracker(DefaultConfig()).WithClock(clock.Now)

	assert.Equal(t, StateIdle, tracker.Status().State)

	status, err := tracker.Start(2.0)
	require.NoError(t, err)
	assert.Equal(t, StateTracking, status.State)
	assert.NotEmpty(t, status.SessionID)
	assert.Equal(t, t0, status.StartedAt)

	_, err = tracker.Start(0)
	assert.ErrorIs(t, err, ErrAlreadyTracking)

	// 1 km north every 12 minutes = 5 km/h
	lat := 24.0
	for i := 0; i <= 3; i++ {
		_, err := tracker.Sample(fix(lat, time.Duration(i)*12*time.Minute, 8))
		require.NoError(t, err)
		lat += kmNorth(1)
	}

	status = tracker.Status()
	assert.InDelta(t, 3.0, status.TotalDistanceKm, 0.001)
	assert.InDelta(t, 5.0, status.SmoothedSpeed, 0.01)
	assert.Equal(t, 3, status.Samples)

	clock.now = t0.Add(36 * time.Minute)
	session, record, err := tracker.Stop(1.0, "Walk 1")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, record)
	assert.InDelta(t, 5.0, record.Speed, 0.01)
	assert.InDelta(t, 36.0, record.Duration, 1e-9)

	assert.Equal(t, StateIdle, tracker.Status().State)
}

func TestTracker_IdleRejectsSamplesAndStop(t *testing.T) {
	tracker := NewTracker(DefaultConfig())

	_, err := tracker.Sample(fix(24.0, 0, 5))
	assert.ErrorIs(t, err, ErrNotTracking)

	_, _, err = tracker.Stop(1.0, "Walk 1")
	assert.ErrorIs(t, err, ErrNotTracking)
}

func TestTracker_StopWithoutWalkReturnsReason(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	_, err := tracker.Start(0)
	require.NoError(t, err)

	session, record, err := tracker.Stop(1.0, "Walk 1")
	assert.NotNil(t, session)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrNoFix)
	assert.Equal(t, StateIdle, tracker.Status().State)
}

func TestTracker_AbortDiscardsSession(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	assert.Nil(t, tracker.Abort())

	_, err := tracker.Start(0)
	require.NoError(t, err)
	_, err = tracker.Sample(fix(24.0, 0, 5))
	require.NoError(t, err)

	session := tracker.Abort()
	require.NotNil(t, session)
	assert.Equal(t, StateIdle, tracker.Status().State)

	_, err = tracker.Sample(fix(24.1, time.Minute, 5))
	assert.ErrorIs(t, err, ErrNotTracking)
}

func TestTracker_SetRouteDistance(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.SetRouteDistance(3)
	assert.Equal(t, 0.0, tracker.Status().RouteDistanceKm)

	_, err := tracker.Start(0)
	require.NoError(t, err)
	tracker.SetRouteDistance(3)
	assert.Equal(t, 3.0, tracker.Status().RouteDistanceKm)
}

func TestGeolocationError(t *testing.T) {
	tests := []struct {
		code GeolocationCode
		name string
		want string
	}{
		{GeolocationPermissionDenied, "PERMISSION_DENIED", "Location access denied"},
		{GeolocationPositionUnavailable, "POSITION_UNAVAILABLE", "Location information unavailable"},
		{GeolocationTimeout, "TIMEOUT", "timed out"},
		{GeolocationUnsupported, "UNSUPPORTED", "not supported"},
		{GeolocationCode(42), "UNKNOWN", "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := error(&GeolocationError{Code: tt.code})
			assert.Equal(t, tt.name, tt.code.String())
			assert.Contains(t, err.Error(), tt.want)

			geoErr, ok := IsGeolocationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, geoErr.Code)
		})
	}
}
