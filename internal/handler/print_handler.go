// internal/handler/print_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/service"
	"print-service/internal/utils"
)

// PrintHandler handles print-related HTTP requests
type PrintHandler struct {
	printService *service.PrintService
	logger       *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(printService *service.PrintService, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		printService: printService,
		logger:       utils.NewServiceLogger(logger, "print-handler"),
	}
}

// RegisterRoutes registers print-related routes
func (h *PrintHandler) RegisterRoutes(router *gin.RouterGroup) {
	print := router.Group("/print")
	{
		print.POST("/order", h.PrintOrder)
		print.POST("/receipt", h.PrintReceipt)
		print.POST("/kitchen", h.PrintKitchen)
		print.POST("/settlement", h.PrintSettlement)
		print.POST("/test", h.TestPrint)
	}
}

// PrintOrder dispatches receipt and kitchen printing for a saved order
// @Summary Print an order
// @Description Print the receipt and kitchen ticket for an order. Printing failures never fail the request; they come back as a warning.
// @Tags Print
// @Accept json
// @Produce json
// @Param request body model.Order true "Order to print"
// @Success 200 {object} utils.APIResponse{data=service.DispatchReport} "Order dispatched"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Router /print/order [post]
func (h *PrintHandler) PrintOrder(c *gin.Context) {
	var order model.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid order body", err)
		return
	}
	if order.OrderNumber == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "orderNumber is required", nil)
		return
	}

	report, err := h.printService.DispatchOrder(c.Request.Context(), &order)
	if err != nil {
		h.logger.Error("Order dispatch failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to dispatch order", err)
		return
	}

	if report.Warning != "" {
		utils.WarningResponse(c, "Order processed", report.Warning, report)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Order printed", report)
}

// PrintReceipt prints only the receipt for an order
// @Summary Print a receipt
// @Tags Print
// @Accept json
// @Produce json
// @Param request body model.Order true "Order to print"
// @Success 200 {object} utils.APIResponse "Receipt printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Printing failed"
// @Router /print/receipt [post]
func (h *PrintHandler) PrintReceipt(c *gin.Context) {
	var order model.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid order body", err)
		return
	}

	if err := h.printService.PrintReceipt(c.Request.Context(), &order); err != nil {
		h.logger.Error("Receipt print failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		utils.ErrorResponse(c, statusForPrintError(err), "Failed to print receipt", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Receipt printed", nil)
}

// PrintKitchen prints only the kitchen ticket for an order
// @Summary Print a kitchen ticket
// @Tags Print
// @Accept json
// @Produce json
// @Param request body model.Order true "Order to print"
// @Success 200 {object} utils.APIResponse "Kitchen ticket printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Printing failed"
// @Router /print/kitchen [post]
func (h *PrintHandler) PrintKitchen(c *gin.Context) {
	var order model.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid order body", err)
		return
	}

	if err := h.printService.PrintKitchen(c.Request.Context(), &order); err != nil {
		h.logger.Error("Kitchen print failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		utils.ErrorResponse(c, statusForPrintError(err), "Failed to print kitchen ticket", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Kitchen ticket printed", nil)
}

// SettlementRequest is the print settlement request payload
type SettlementRequest struct {
	PeriodLabel string        `json:"period_label" binding:"required"`
	Orders      []model.Order `json:"orders" binding:"required"`
}

// PrintSettlement prints a settlement report for a list of orders
// @Summary Print a settlement report
// @Tags Print
// @Accept json
// @Produce json
// @Param request body SettlementRequest true "Settlement period and orders"
// @Success 200 {object} utils.APIResponse "Settlement printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Printing failed"
// @Router /print/settlement [post]
func (h *PrintHandler) PrintSettlement(c *gin.Context) {
	var req SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid settlement body", err)
		return
	}

	if err := h.printService.PrintSettlement(c.Request.Context(), req.PeriodLabel, req.Orders); err != nil {
		h.logger.Error("Settlement print failed",
			zap.String("period", req.PeriodLabel),
			zap.Error(err))
		utils.ErrorResponse(c, statusForPrintError(err), "Failed to print settlement", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Settlement printed", nil)
}

// TestPrintRequest is the test print request payload
type TestPrintRequest struct {
	Target string `json:"target"`
}

// TestPrint sends a self-test document to a printer
// @Summary Test a printer
// @Tags Print
// @Accept json
// @Produce json
// @Param request body TestPrintRequest false "Target printer, defaults to the receipt printer"
// @Success 200 {object} utils.APIResponse "Test page printed"
// @Failure 502 {object} utils.APIResponse "Printing failed"
// @Router /print/test [post]
func (h *PrintHandler) TestPrint(c *gin.Context) {
	var req TestPrintRequest
	// Body is optional for test prints.
	_ = c.ShouldBindJSON(&req)

	if err := h.printService.TestPrint(c.Request.Context(), req.Target); err != nil {
		utils.ErrorResponse(c, statusForPrintError(err), "Failed to print test page", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Test page printed", nil)
}

func statusForPrintError(err error) int {
	if errors.Is(err, service.ErrNoTransport) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
