package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifai-backend-go/internal/core"
	"verifai-backend-go/internal/models"
)

// ReportHandler handles the analysis-report endpoints.
type ReportHandler struct {
	reportService core.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs core.ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reportService: rs, logger: logger}
}

// ListReports handles GET /api/v1/reports.
// Returns the caller's scan records, newest first.
func (h *ReportHandler) ListReports(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("failed to list reports", zap.String("accountId", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve reports", Details: err.Error()})
		return
	}
	if reports == nil {
		reports = []*models.ScanRecord{} // JSON [] instead of null
	}

	c.JSON(http.StatusOK, reports)
}

// DeleteReport handles DELETE /api/v1/reports/:reportId.
// Only the owning account can delete a report.
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	reportID := c.Param("reportId")
	if reportID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Report ID is required"})
		return
	}

	if err := h.reportService.DeleteReport(c.Request.Context(), accountID, reportID); err != nil {
		if errors.Is(err, core.ErrScanNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
			return
		}
		h.logger.Error("failed to delete report",
			zap.String("accountId", accountID), zap.String("reportId", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete report", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Report deleted"})
}
