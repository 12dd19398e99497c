package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyTracking = errors.New("walk already being tracked")
	ErrNotTracking     = errors.New("no walk is being tracked")
)

// GeolocationCode mirrors the position error codes reported by device
// geolocation APIs.
type GeolocationCode int

const (
	GeolocationUnsupported         GeolocationCode = 0
	GeolocationPermissionDenied    GeolocationCode = 1
	GeolocationPositionUnavailable GeolocationCode = 2
	GeolocationTimeout             GeolocationCode = 3
)

func (c GeolocationCode) String() string {
	switch c {
	case GeolocationUnsupported:
		return "UNSUPPORTED"
	case GeolocationPermissionDenied:
		return "PERMISSION_DENIED"
	case GeolocationPositionUnavailable:
		return "POSITION_UNAVAILABLE"
	case GeolocationTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// GeolocationError is a failure of the position source. It always ends tracking.
type GeolocationError struct {
	Code GeolocationCode
}

func (e *GeolocationError) Error() string {
	if e.Code == GeolocationUnsupported {
		return "Geolocation not supported by this device"
	}

	msg := "Location tracking error: "
	switch e.Code {
	case GeolocationPermissionDenied:
		msg += "Location access denied. Please enable location permissions and try again."
	case GeolocationPositionUnavailable:
		msg += "Location information unavailable. Check your GPS signal."
	case GeolocationTimeout:
		msg += "Location request timed out. Please try again."
	default:
		msg += "Unknown error occurred."
	}
	return msg
}

// IsGeolocationError reports whether err carries a position source failure.
func IsGeolocationError(err error) (*GeolocationError, bool) {
	var geoErr *GeolocationError
	if errors.As(err, &geoErr) {
		return geoErr, true
	}
	return nil, false
}

func wrapState(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
