// internal/handler/settings_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/service"
	"print-service/internal/utils"
)

// SettingsHandler handles printer settings and discovery HTTP requests
type SettingsHandler struct {
	settingsRepo     repository.SettingsRepository
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo repository.SettingsRepository, discoveryService *service.DiscoveryService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsRepo:     settingsRepo,
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "settings-handler"),
	}
}

// RegisterRoutes registers settings and discovery routes
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("/printing", h.GetSettings)
		settings.PUT("/printing", h.SaveSettings)
	}

	printers := router.Group("/printers")
	{
		printers.GET("", h.ListPrinters)
		printers.GET("/paired", h.ListPairedPrinters)
		printers.GET("/suggest", h.SuggestTargets)
		printers.POST("/locate-gateways", h.LocateGateways)
	}
}

// GetSettings returns the stored print settings
// @Summary Get print settings
// @Tags Settings
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.PrintSettings} "Current settings"
// @Router /settings/printing [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsRepo.Get(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Settings loaded", settings)
}

// SaveSettings stores new print settings
// @Summary Save print settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body model.PrintSettings true "Settings to store"
// @Success 200 {object} utils.APIResponse{data=model.PrintSettings} "Settings saved"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Router /settings/printing [put]
func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	var settings model.PrintSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid settings body", err)
		return
	}

	if err := h.settingsRepo.Save(c.Request.Context(), &settings); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Settings saved", settings)
}

// ListPrinters lists printers per transport
// @Summary List printers
// @Description List printers visible through every transport, including unavailable transports with empty lists
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]service.TransportPrinters} "Printer views"
// @Router /printers [get]
func (h *SettingsHandler) ListPrinters(c *gin.Context) {
	views := h.discoveryService.ListPrinters(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Printers listed", views)
}

// ListPairedPrinters lists printers paired with the local bridge
// @Summary List paired printers
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]model.PairedPrinter} "Paired printers"
// @Router /printers/paired [get]
func (h *SettingsHandler) ListPairedPrinters(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Paired printers listed", h.discoveryService.PairedPrinters())
}

// SuggestTargets proposes receipt and kitchen printer assignments
// @Summary Suggest printer targets
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse "Suggested assignment"
// @Router /printers/suggest [get]
func (h *SettingsHandler) SuggestTargets(c *gin.Context) {
	receipt, kitchen := h.discoveryService.SuggestTargets(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Targets suggested", gin.H{
		"receipt_printer": receipt,
		"kitchen_printer": kitchen,
	})
}

// LocateGateways browses the local network for print gateways
// @Summary Locate print gateways
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]transport.GatewayCandidate} "Gateways found"
// @Router /printers/locate-gateways [post]
func (h *SettingsHandler) LocateGateways(c *gin.Context) {
	candidates, err := h.discoveryService.LocateGateways(c.Request.Context(), 3*time.Second)
	if err != nil {
		h.logger.Error("Gateway discovery failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Gateway discovery failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Gateways located", candidates)
}
