package web

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sstent/walktime-go/internal/estimator"
	"github.com/sstent/walktime-go/internal/export"
	"github.com/sstent/walktime-go/internal/logger"
	"github.com/sstent/walktime-go/internal/metrics"
	"github.com/sstent/walktime-go/internal/models"
	"github.com/sstent/walktime-go/internal/speed"
	"github.com/sstent/walktime-go/internal/sync"
	"github.com/sstent/walktime-go/internal/tracking"
)

// maxUploadBytes bounds trace uploads.
const maxUploadBytes = 32 << 20

type Handler struct {
	est      *estimator.Estimator
	importer *sync.ImportService
	log      logger.Logger
	now      func() time.Time
}

func NewHandler(est *estimator.Estimator, importer *sync.ImportService, log logger.Logger) *Handler {
	return &Handler{
		est:      est,
		importer: importer,
		log:      log,
		now:      time.Now,
	}
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), metrics.Middleware(), RequestLogger(h.log))
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
	api.GET("/speed", h.Speed)
	api.GET("/estimate", h.Estimate)
	api.POST("/route", h.PlanRoute)

	api.GET("/tracking", h.TrackingStatus)
	api.POST("/tracking/start", h.StartTracking)
	api.POST("/tracking/position", h.RecordPosition)
	api.POST("/tracking/error", h.LocationError)
	api.POST("/tracking/stop", h.StopTracking)

	api.GET("/walks", h.Walks)
	api.DELETE("/walks", h.ClearWalks)
	api.GET("/walks/export", h.ExportWalks)
	api.POST("/walks/import", h.ImportWalk)
	api.GET("/sync", h.SyncLedger)
	api.POST("/sync", h.Sync)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.est.Settings())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req models.UserSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid settings: "+err.Error())
		return
	}

	if err := h.est.UpdateSettings(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.est.Settings())
}

type speedResponse struct {
	PersonalSpeedKmh float64 `json:"personal_speed_kmh"`
	BaseSpeedKmh     float64 `json:"base_speed_kmh"`
	TerrainFactor    float64 `json:"terrain_factor"`
	Terrain          string  `json:"terrain"`
	Walks            int     `json:"walks"`
}

func (h *Handler) Speed(c *gin.Context) {
	settings := h.est.Settings()
	c.JSON(http.StatusOK, speedResponse{
		PersonalSpeedKmh: h.est.PersonalSpeed(),
		BaseSpeedKmh:     settings.AverageSpeed,
		TerrainFactor:    settings.TerrainFactor,
		Terrain:          speed.TerrainDescription(settings.TerrainFactor),
		Walks:            h.est.Stats().TotalWalks,
	})
}

func (h *Handler) Estimate(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Query("distance_km"), 64)
	if err != nil {
		badRequest(c, "distance_km must be a number")
		return
	}

	projection, err := h.est.Estimate(distance)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

type routeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *Handler) PlanRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid route request: "+err.Error())
		return
	}

	plan, err := h.est.PlanRoute(c.Request.Context(), req.Start, req.End)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) TrackingStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.est.TrackingStatus())
}

func (h *Handler) StartTracking(c *gin.Context) {
	status, err := h.est.StartWalk(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

// positionRequest is one fix as reported by the client's geolocation API.
type positionRequest struct {
	Lat       *float64 `json:"lat" binding:"required"`
	Lng       *float64 `json:"lng" binding:"required"`
	Timestamp *int64   `json:"timestamp" binding:"required"` // ms since epoch
	Accuracy  float64  `json:"accuracy"`
}

func (h *Handler) RecordPosition(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid position: "+err.Error())
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 || req.Accuracy < 0 {
		badRequest(c, "position out of range")
		return
	}

	update, err := h.est.RecordPosition(c.Request.Context(), models.Position{
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Timestamp: time.UnixMilli(*req.Timestamp),
		Accuracy:  req.Accuracy,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

type locationErrorRequest struct {
	Code *int `json:"code" binding:"required"`
}

func (h *Handler) LocationError(c *gin.Context) {
	var req locationErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid location error: "+err.Error())
		return
	}

	code := tracking.GeolocationCode(*req.Code)
	if code < tracking.GeolocationUnsupported || code > tracking.GeolocationTimeout {
		badRequest(c, "unknown location error code")
		return
	}

	err := h.est.LocationFailed(c.Request.Context(), code)
	c.JSON(http.StatusOK, gin.H{
		"code":    code.String(),
		"message": err.Error(),
		"state":   h.est.TrackingStatus().State,
	})
}

func (h *Handler) StopTracking(c *gin.Context) {
	result, err := h.est.StopWalk(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type walksResponse struct {
	Walks []models.WalkRecord `json:"walks"`
	Stats speed.Stats         `json:"stats"`
}

func (h *Handler) Walks(c *gin.Context) {
	limit := estimator.RecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, walksResponse{
		Walks: h.est.Walks(limit),
		Stats: h.est.Stats(),
	})
}

func (h *Handler) ClearWalks(c *gin.Context) {
	if err := h.est.ClearWalks(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ExportWalks(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.est.ExportCSV(&buf); err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(h.now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) ImportWalk(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing trace file")
		return
	}
	if file.Size > maxUploadBytes {
		badRequest(c, "trace file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.importer.ImportData(c.Request.Context(), file.Filename, data)
	if err != nil && !result.Recorded {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Sync scans the import inbox now instead of waiting for the schedule.
func (h *Handler) Sync(c *gin.Context) {
	result, err := h.importer.Scan(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncLedger lists the inbox files already processed.
func (h *Handler) SyncLedger(c *gin.Context) {
	files, err := h.importer.Processed()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
