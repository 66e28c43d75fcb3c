package api

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifai-backend-go/internal/core"
	"verifai-backend-go/internal/detector"
	"verifai-backend-go/internal/models"
)

// maxUploadBytes bounds multipart image uploads (20 MB, generous for photos).
const maxUploadBytes = 20 << 20

// AnalysisHandler handles the analyze and guest-migration endpoints.
type AnalysisHandler struct {
	analysisService  core.AnalysisService
	migrationService core.MigrationService
	logger           *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(as core.AnalysisService, ms core.MigrationService, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{analysisService: as, migrationService: ms, logger: logger}
}

// Analyze handles POST /api/v1/analyze.
// The endpoint accepts either a multipart "file" upload or a JSON body with
// an imageBase64 field (raw base64 or a full data URL). Authentication is
// optional: anonymous callers get a verdict but no server-side persistence.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	accountID, _ := callerAccountID(c) // empty for guests

	submission, ok := h.imageSubmission(c)
	if !ok {
		return // response already written
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), accountID, submission)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrQuotaExceeded):
			// Distinct condition so the client can render an upgrade prompt.
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Quota exceeded", Details: err.Error()})
		case errors.Is(err, core.ErrEmptyImage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image data provided"})
		case errors.Is(err, detector.ErrAllModelsFailed):
			h.logger.Error("analysis failed: all models exhausted",
				zap.String("accountId", accountID), zap.Error(err))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Analysis provider unavailable", Details: err.Error()})
		default:
			h.logger.Error("analysis failed", zap.String("accountId", accountID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Analysis failed", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// MigrateGuestAnalyses handles POST /api/v1/analyses/migrate.
// Requires authentication; imports as many guest items as quota allows.
func (h *AnalysisHandler) MigrateGuestAnalyses(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	var req models.MigrateGuestAnalysesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	result, err := h.migrationService.MigrateGuestAnalyses(c.Request.Context(), accountID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrQuotaExceeded):
			// The original client treats this as a normal, renderable outcome
			// rather than a transport failure, so it ships with a 200.
			c.JSON(http.StatusOK, MigrationResponse{Success: false, Message: "Free plan limit reached: " + err.Error()})
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		default:
			h.logger.Error("guest migration failed", zap.String("accountId", accountID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Migration failed", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, MigrationResponse{
		Success:  true,
		Message:  result.Message,
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}

// imageSubmission extracts the image payload from the request, preferring a
// multipart file and falling back to a JSON body. On failure it writes the
// error response itself and returns ok=false.
func (h *AnalysisHandler) imageSubmission(c *gin.Context) (string, bool) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Uploaded file is too large"})
			return "", false
		}
		file, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read uploaded file", Details: openErr.Error()})
			return "", false
		}
		defer file.Close()

		raw, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if readErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read uploaded file", Details: readErr.Error()})
			return "", false
		}
		if len(raw) == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file"})
			return "", false
		}

		// Wrap in a data URL so the declared content type survives into the
		// pipeline's MIME derivation.
		contentType := fileHeader.Header.Get("Content-Type")
		encoded := base64.StdEncoding.EncodeToString(raw)
		if contentType != "" {
			return "data:" + contentType + ";base64," + encoded, true
		}
		return encoded, true
	}

	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file", Details: "provide a multipart 'file' or a JSON imageBase64 field"})
		return "", false
	}
	return req.ImageBase64, true
}
