package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifai-backend-go/internal/core"
	"verifai-backend-go/internal/models"
)

// UserHandler handles account-profile endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{userService: us, logger: logger}
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	account, err := h.userService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("failed to get user profile", zap.String("accountId", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateProfile handles PATCH /api/v1/users/me.
// Only the display name is mutable; email and role are owned by the identity
// provider and the billing pipeline respectively.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if req.Name == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No updatable fields provided"})
		return
	}

	account, err := h.userService.UpdateName(c.Request.Context(), accountID, *req.Name)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("failed to update user profile", zap.String("accountId", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update user profile", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}

// GetQuota handles GET /api/v1/users/quota.
// Returns the caller's derived quota projection for client-side rendering.
func (h *UserHandler) GetQuota(c *gin.Context) {
	accountID, ok := callerAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	view, err := h.userService.Quota(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("failed to get quota", zap.String("accountId", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve quota", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}
