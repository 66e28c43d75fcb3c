package core

import (
	"context"

	"verifai-backend-go/internal/detector"
	"verifai-backend-go/internal/models"
)

// AnalysisService runs the full analysis pipeline for one image submission.
// accountID is empty for anonymous (guest) callers: the analysis still runs,
// but nothing is persisted server-side and no quota is consumed.
type AnalysisService interface {
	Analyze(ctx context.Context, accountID, imageSubmission string) (*models.AnalysisResult, error)
}

// MigrationService imports locally-held guest analyses into a newly
// authenticated account, bounded by that account's remaining quota.
type MigrationService interface {
	MigrateGuestAnalyses(ctx context.Context, accountID string, items []models.GuestBatchItem) (*models.MigrationResult, error)
}

// ReportService lists and deletes an account's scan records.
type ReportService interface {
	ListReports(ctx context.Context, accountID string) ([]*models.ScanRecord, error)
	DeleteReport(ctx context.Context, accountID, reportID string) error
}

// UserService defines the interface for account-profile operations.
type UserService interface {
	// GetOrCreate retrieves an account by ID, creating it with default values
	// on first authenticated contact. Returns the account and whether it was
	// newly created.
	GetOrCreate(ctx context.Context, accountID, email, name string) (*models.Account, bool, error)
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	UpdateName(ctx context.Context, accountID, name string) (*models.Account, error)
	Quota(ctx context.Context, accountID string) (*models.QuotaView, error)
}

// ObjectStorage is the upload(bytes) -> url surface of the object storage
// service. Implemented by storage.BucketUploader; faked in tests.
type ObjectStorage interface {
	UploadImage(ctx context.Context, data []byte, contentType string) (string, error)
}

// ModelInvoker is the verdict-producing surface of the detector.
// Implemented by detector.Invoker; faked in tests.
type ModelInvoker interface {
	Invoke(ctx context.Context, imageData []byte, mimeType string) (*detector.Verdict, error)
}
