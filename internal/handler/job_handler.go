// internal/handler/job_handler.go
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/repository"
	"print-service/internal/utils"
)

// JobHandler exposes the print job audit log
type JobHandler struct {
	jobRepo repository.JobRepository
	logger  *utils.ServiceLogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobRepo repository.JobRepository, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
		logger:  utils.NewServiceLogger(logger, "job-handler"),
	}
}

// RegisterRoutes registers job audit routes
func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/jobs")
	{
		jobs.GET("", h.ListRecent)
		jobs.GET("/stats", h.Stats)
		jobs.GET("/order/:orderNumber", h.ListByOrder)
		jobs.GET("/:id", h.GetByID)
	}
}

// ListRecent returns the most recent print jobs
// @Summary List recent print jobs
// @Tags Jobs
// @Produce json
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} utils.APIResponse{data=[]model.PrintJob} "Recent jobs"
// @Router /jobs [get]
func (h *JobHandler) ListRecent(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	jobs, err := h.jobRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list print jobs", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Print jobs listed", jobs)
}

// Stats returns print job outcome counts
// @Summary Print job statistics
// @Tags Jobs
// @Produce json
// @Param since query string false "RFC3339 start of the window, default 24h ago"
// @Success 200 {object} utils.APIResponse{data=repository.JobStats} "Job statistics"
// @Router /jobs/stats [get]
func (h *JobHandler) Stats(c *gin.Context) {
	since := time.Now().Add(-24 * time.Hour)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid since timestamp", err)
			return
		}
		since = parsed
	}

	stats, err := h.jobRepo.GetJobStats(c.Request.Context(), since)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to compute job statistics", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Job statistics", stats)
}

// ListByOrder returns all print jobs recorded for one order
// @Summary List print jobs for an order
// @Tags Jobs
// @Produce json
// @Param orderNumber path string true "Order number"
// @Success 200 {object} utils.APIResponse{data=[]model.PrintJob} "Jobs for the order"
// @Router /jobs/order/{orderNumber} [get]
func (h *JobHandler) ListByOrder(c *gin.Context) {
	orderNumber := c.Param("orderNumber")
	if orderNumber == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "orderNumber is required", nil)
		return
	}

	jobs, err := h.jobRepo.ListByOrder(c.Request.Context(), orderNumber)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list print jobs", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Print jobs listed", jobs)
}

// GetByID returns a single print job
// @Summary Get a print job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} utils.APIResponse{data=model.PrintJob} "Print job"
// @Failure 404 {object} utils.APIResponse "Job not found"
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid job ID", err)
		return
	}

	job, err := h.jobRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.ErrorResponse(c, http.StatusNotFound, "Print job not found", nil)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get print job", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Print job", job)
}
