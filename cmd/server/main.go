package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifai-backend-go/internal/api"
	"verifai-backend-go/internal/config"
	"verifai-backend-go/internal/core"
	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/detector"
	"verifai-backend-go/internal/middleware"
	"verifai-backend-go/internal/storage"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	// NewDevelopment for verbose, human-readable output during development.
	// For production, consider zap.NewProduction() or a custom configuration.
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync() // Flushes buffer, if any.
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (Firestore, Auth, Storage clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirebase(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth, Storage) initialized successfully.")

	// --- 4. Retrieve initialized clients ---
	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient() // Needed for AuthMiddleware
	storageBucket := db.GetStorageBucket()

	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	if firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase Auth client is nil after initialization. Application cannot start.")
	}
	if storageBucket == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Storage bucket handle is nil after initialization. Application cannot start.")
	}
	zapLogger.Info("Firestore, Firebase Auth and Storage clients retrieved successfully.")

	// --- 5. Initialize Repositories ---
	accountRepo := db.NewFirestoreAccountRepository(firestoreClient)
	scanRepo := db.NewFirestoreScanRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 6. Initialize Storage Uploader and Model Provider ---
	uploader, err := storage.NewBucketUploader(storageBucket, appConfig.FirebaseStorageBucket)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize bucket uploader", zap.Error(err))
	}

	geminiProvider, err := detector.NewGeminiProvider(initCtx, appConfig.GeminiAPIKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Gemini provider", zap.Error(err))
	}
	invoker := detector.NewInvoker(geminiProvider, appConfig.GeminiModel, zapLogger)
	zapLogger.Info("Model invoker initialized", zap.Strings("models", invoker.Candidates()))

	// --- 7. Initialize Core Services ---
	ledger := core.NewQuotaLedger(accountRepo, appConfig.FreePlanAnalyses)
	userService := core.NewUserService(accountRepo, ledger)
	analysisService := core.NewAnalysisService(accountRepo, scanRepo, ledger, invoker, uploader, zapLogger)
	migrationService := core.NewMigrationService(accountRepo, scanRepo, ledger, zapLogger)
	reportService := core.NewReportService(scanRepo, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 8. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
		zapLogger.Info("Gin mode set to 'release'.")
	} else {
		gin.SetMode(gin.DebugMode)
		zapLogger.Info("Gin mode set to 'debug'.")
	}
	// gin.New() for full control over the middleware stack.
	router := gin.New()
	zapLogger.Info("Gin engine created.")

	// --- 9. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))

	// Apply CORS middleware only if ClientURL is configured.
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured. API might not be accessible from a web frontend.")
	}

	// --- 10. Setup API Routes ---
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		userService,
		analysisService,
		migrationService,
		reportService,
	)

	// --- 11. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 12. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Give active connections time to finish before the server is forced closed.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
