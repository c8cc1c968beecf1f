package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/colegio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DBPinger checks database connectivity
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and system API endpoints
type SystemHandler struct {
	BaseHandler
	db        DBPinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DBPinger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Health is the liveness probe. It answers as long as the process serves HTTP.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// DBHealthResponse represents the database health response
type DBHealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Latency string `json:"latency" example:"1.2ms"`
}

// HealthDB pings the database and reports connectivity
func (h *SystemHandler) HealthDB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInternal, "Database is unreachable", getRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(DBHealthResponse{
		Status:  "ok",
		Latency: time.Since(start).Round(time.Microsecond).String(),
	}))
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Colegio Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Colegio Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/health/db", h.HealthDB)
	rg.GET("/system/info", h.GetSystemInfo)
}
