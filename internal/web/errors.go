package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sstent/walktime-go/internal/directions"
	"github.com/sstent/walktime-go/internal/estimator"
	"github.com/sstent/walktime-go/internal/export"
	"github.com/sstent/walktime-go/internal/profile"
	"github.com/sstent/walktime-go/internal/tracking"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, estimator.ErrMissingEndpoints),
		errors.Is(err, estimator.ErrInvalidDistance),
		errors.Is(err, profile.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, tracking.ErrAlreadyTracking),
		errors.Is(err, tracking.ErrNotTracking):
		return http.StatusConflict
	case errors.Is(err, export.ErrNoData):
		return http.StatusNotFound
	}

	switch directions.StatusOf(err) {
	case "":
		return http.StatusInternalServerError
	case directions.StatusNotFound, directions.StatusZeroResults:
		return http.StatusNotFound
	case directions.StatusOverQueryLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed", err, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
