package handlers

import (
	"net/http"

	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard aggregates.
type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetAdminDashboard returns order totals, staff headcount and the payment breakdown.
func (h *ReportHandler) GetAdminDashboard(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	dash, err := h.reportService.AdminDashboard(c.Request.Context(), actor)
	if err != nil {
		utils.LogError(err, "GetAdminDashboard: Error from reportService.AdminDashboard")
		respondServiceError(c, err, "Failed to build dashboard.")
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *ReportHandler) GetCounterDashboard(c *gin.Context) {
	dash, err := h.reportService.CounterDashboard(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetCounterDashboard: Error from reportService.CounterDashboard")
		respondServiceError(c, err, "Failed to build dashboard.")
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *ReportHandler) GetWaiterDashboard(c *gin.Context) {
	dash, err := h.reportService.WaiterDashboard(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetWaiterDashboard: Error from reportService.WaiterDashboard")
		respondServiceError(c, err, "Failed to build dashboard.")
		return
	}
	c.JSON(http.StatusOK, dash)
}

// GetPaymentBreakdown counts orders per payment method.
func (h *ReportHandler) GetPaymentBreakdown(c *gin.Context) {
	counts, err := h.reportService.PaymentBreakdown(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetPaymentBreakdown: Error from reportService.PaymentBreakdown")
		respondServiceError(c, err, "Failed to build payment breakdown.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts, "total": len(counts)})
}
