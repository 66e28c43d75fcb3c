package api

import (
	"github.com/gin-gonic/gin"

	"verifai-backend-go/internal/middleware"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// MigrationResponse reports the outcome of a guest-analyses migration.
type MigrationResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// callerAccountID retrieves the authenticated caller's account ID from the
// Gin context, as populated by the auth middleware. The second return value
// is false for anonymous callers (or when the middleware did not run).
func callerAccountID(c *gin.Context) (string, bool) {
	rawUserID, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return "", false
	}
	accountID, ok := rawUserID.(string)
	if !ok || accountID == "" {
		return "", false
	}
	return accountID, true
}
