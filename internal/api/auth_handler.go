package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifai-backend-go/internal/core"
	"verifai-backend-go/internal/middleware"
	"verifai-backend-go/internal/models"
)

// AuthHandler handles the profile-synchronization endpoint that clients call
// right after sign-in.
type AuthHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{userService: us, logger: logger}
}

// SyncProfile handles POST /api/v1/users/sync.
// Idempotent upsert: the first authenticated call creates the account from
// token claims (optionally overridden by the request body), later calls
// return the existing record untouched. 201 on create, 200 otherwise.
func (h *AuthHandler) SyncProfile(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	// Body is optional; token claims are the default identity source.
	var req models.SyncAccountRequest
	_ = c.ShouldBindJSON(&req)

	email := req.Email
	if email == "" {
		email = c.GetString(middleware.ContextUserEmail)
	}
	name := req.Name
	if name == "" {
		name = c.GetString(middleware.ContextUserName)
	}

	account, created, err := h.userService.GetOrCreate(c.Request.Context(), accountID, email, name)
	if err != nil {
		h.logger.Error("failed to sync user profile", zap.String("accountId", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sync user profile", Details: err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.logger.Info("created account on first sync", zap.String("accountId", accountID))
	}
	c.JSON(status, account)
}
