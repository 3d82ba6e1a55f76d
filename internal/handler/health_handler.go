// internal/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/database"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db         *database.DB
	transports []transport.PrinterTransport
	config     *config.Config
	logger     *utils.ServiceLogger
	startTime  time.Time
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult is one subsystem's health verdict
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, transports []transport.PrinterTransport, cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:         db,
		transports: transports,
		config:     cfg,
		logger:     utils.NewServiceLogger(logger, "health-handler"),
		startTime:  time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/health/db", h.DatabaseHealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Overall service health, including database and print transport availability
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]CheckResult),
	}

	health.Checks["database"] = h.checkDatabase()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	transportUp := false
	for _, t := range h.transports {
		check := CheckResult{Status: "down"}
		if t.Available(ctx) {
			check.Status = "up"
			transportUp = true
		}
		health.Checks["transport_"+t.Name()] = check
	}

	statusCode := http.StatusOK
	if health.Checks["database"].Status != "up" {
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if !transportUp {
		// Printing is degraded but orders can still be accepted.
		health.Status = "degraded"
	}

	c.JSON(statusCode, health)
}

// DatabaseHealthCheck checks only the database
// @Summary Database health check
// @Tags Health
// @Produce json
// @Success 200 {object} CheckResult "Database is healthy"
// @Failure 503 {object} CheckResult "Database is unhealthy"
// @Router /health/db [get]
func (h *HealthHandler) DatabaseHealthCheck(c *gin.Context) {
	check := h.checkDatabase()
	statusCode := http.StatusOK
	if check.Status != "up" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, check)
}

// ReadinessCheck reports whether the service can take traffic
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service is ready"
// @Failure 503 {object} map[string]string "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if err := h.db.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck reports whether the process is alive
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) checkDatabase() CheckResult {
	start := time.Now()
	if err := h.db.HealthCheck(); err != nil {
		return CheckResult{
			Status:  "down",
			Message: err.Error(),
			Latency: time.Since(start).String(),
		}
	}
	return CheckResult{
		Status:  "up",
		Latency: time.Since(start).String(),
	}
}
