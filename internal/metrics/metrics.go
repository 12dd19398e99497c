package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracking metrics
	PositionSamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walktime_position_samples_total",
			Help: "Total number of GPS fixes processed, by filter outcome",
		},
		[]string{"outcome"},
	)

	WalksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walktime_walks_total",
			Help: "Total number of finished walks, by result",
		},
		[]string{"result"},
	)

	TrackingActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "walktime_tracking_active",
			Help: "1 while a walk is being tracked",
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walktime_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walktime_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Walk results.
const (
	ResultRecorded  = "recorded"
	ResultDiscarded = "discarded"
	ResultAborted   = "aborted"
	ResultImported  = "imported"
)

func RecordSample(outcome string) {
	PositionSamplesTotal.WithLabelValues(outcome).Inc()
}

func RecordWalk(result string) {
	WalksTotal.WithLabelValues(result).Inc()
}

func SetTracking(active bool) {
	if active {
		TrackingActive.Set(1)
		return
	}
	TrackingActive.Set(0)
}

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Middleware records every request under its route template so path
// parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPMetrics(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
