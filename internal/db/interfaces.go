package db

import (
	"context"

	"verifai-backend-go/internal/models"
)

// AccountRepository defines the interface for account data storage operations.
// Accounts are never deleted by this service; deprovisioning is driven by an
// external event outside this subsystem.
type AccountRepository interface {
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	// UpdateAnalysesDone writes only the usage counter. The quota ledger and
	// the guest migration both use this so a profile update cannot race a
	// counter write into a stale full-document overwrite.
	UpdateAnalysesDone(ctx context.Context, accountID string, analysesDone int) error
}

// ScanRepository defines the interface for scan record storage operations.
type ScanRepository interface {
	Create(ctx context.Context, scan *models.ScanRecord) (string, error) // Returns new scan ID
	GetByID(ctx context.Context, scanID string) (*models.ScanRecord, error)
	ListByAccountID(ctx context.Context, accountID string) ([]*models.ScanRecord, error)
	Delete(ctx context.Context, scanID string) error
}
