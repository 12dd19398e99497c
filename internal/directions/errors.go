package directions

import "errors"

// Status categorizes a provider failure.
type Status string

const (
	StatusNotFound             Status = "NOT_FOUND"
	StatusZeroResults          Status = "ZERO_RESULTS"
	StatusMaxWaypointsExceeded Status = "MAX_WAYPOINTS_EXCEEDED"
	StatusInvalidRequest       Status = "INVALID_REQUEST"
	StatusOverQueryLimit       Status = "OVER_QUERY_LIMIT"
	StatusRequestDenied        Status = "REQUEST_DENIED"
	StatusUnknownError         Status = "UNKNOWN_ERROR"
)

// Error is a categorized directions failure. It is never retried.
type Error struct {
	Status Status
	Err    error
}

func (e *Error) Error() string {
	msg := "Could not calculate route: "
	switch e.Status {
	case StatusNotFound:
		msg += "One or more locations could not be found."
	case StatusZeroResults:
		msg += "No walking route could be found between these locations."
	case StatusMaxWaypointsExceeded:
		msg += "Too many waypoints in the request."
	case StatusInvalidRequest:
		msg += "Invalid request."
	case StatusOverQueryLimit:
		msg += "Query limit exceeded. Please try again later."
	case StatusRequestDenied:
		msg += "Request denied. Check your API key."
	case StatusUnknownError:
		msg += "Server error. Please try again."
	default:
		msg += string(e.Status)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(status Status, cause error) *Error {
	return &Error{Status: status, Err: cause}
}

// StatusOf extracts the category of err, or "" if err is not a directions error.
func StatusOf(err error) Status {
	var dirErr *Error
	if errors.As(err, &dirErr) {
		return dirErr.Status
	}
	return ""
}
