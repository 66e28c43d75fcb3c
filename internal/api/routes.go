package api

import (
	"net/http" // For http.StatusOK in health check

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifai-backend-go/internal/config"
	"verifai-backend-go/internal/core"
	"verifai-backend-go/internal/db" // For db.GetFirebaseAuthClient()
	"verifai-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (Logging, Recovery, CORS) are expected to be applied to the
// `router` instance *before* this function is called, typically in `main.go`.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	userService core.UserService,
	analysisService core.AnalysisService,
	migrationService core.MigrationService,
	reportService core.ReportService,
) {
	// Get Firebase Auth client. This must be available after db.InitFirebase().
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		// Critical failure: routes cannot be secured without the auth client.
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created, and routes will not be set up.")
		panic("Firebase Auth client is nil during route setup. Ensure db.InitFirebase() was called and succeeded.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := NewAuthHandler(userService, logger)
	userHandler := NewUserHandler(userService, logger)
	analysisHandler := NewAnalysisHandler(analysisService, migrationService, logger)
	reportHandler := NewReportHandler(reportService, logger)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and Authentication Endpoints ---
		userGroup := apiV1.Group("/users")
		{
			// POST /api/v1/users/sync - Called after client-side sign-in to
			// ensure the backend profile exists. Requires auth.
			userGroup.POST("/sync", authMW.VerifyToken(), authHandler.SyncProfile)

			userGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
			userGroup.PATCH("/me", authMW.VerifyToken(), userHandler.UpdateProfile)
			userGroup.GET("/quota", authMW.VerifyToken(), userHandler.GetQuota)
		}

		// --- Analysis Endpoints ---
		// Analyze is deliberately anonymous-friendly: a bearer token is
		// verified when offered, but guests may submit too.
		apiV1.POST("/analyze", authMW.OptionalVerifyToken(), analysisHandler.Analyze)

		// Guest-to-account migration requires a signed-in caller.
		apiV1.POST("/analyses/migrate", authMW.VerifyToken(), analysisHandler.MigrateGuestAnalyses)

		// --- Report Endpoints ---
		reportsGroup := apiV1.Group("/reports", authMW.VerifyToken())
		{
			reportsGroup.GET("", reportHandler.ListReports)
			reportsGroup.DELETE("/:reportId", reportHandler.DeleteReport)
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "VerifAI backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
