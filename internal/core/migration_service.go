package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/models"
)

// migrationService implements the MigrationService interface.
//
// The import is deliberately not atomic across the batch: scans are created
// one by one and the usage counter is written once after the loop. A crash
// between the two phases leaves the counter under-counting relative to the
// created records; that inconsistency is accepted and not reconciled here.
type migrationService struct {
	accountRepo db.AccountRepository
	scanRepo    db.ScanRepository
	ledger      *QuotaLedger
	logger      *zap.Logger
}

// NewMigrationService creates a new MigrationService instance.
func NewMigrationService(
	accountRepo db.AccountRepository,
	scanRepo db.ScanRepository,
	ledger *QuotaLedger,
	logger *zap.Logger,
) MigrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &migrationService{
		accountRepo: accountRepo,
		scanRepo:    scanRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// MigrateGuestAnalyses imports as many guest items as the account's remaining
// quota allows, in their original client-supplied order.
func (s *migrationService) MigrateGuestAnalyses(ctx context.Context, accountID string, items []models.GuestBatchItem) (*models.MigrationResult, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: account with ID '%s'", ErrUserNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to resolve account '%s' for migration: %w", accountID, err)
	}

	if len(items) == 0 {
		return &models.MigrationResult{Message: "Nothing to migrate"}, nil
	}

	// Pro accounts import the entire batch unconditionally; free accounts
	// import a prefix bounded by their remaining quota.
	allowed := len(items)
	if !account.IsPro() {
		view := s.ledger.View(account)
		if view.Remaining == 0 {
			return nil, fmt.Errorf("%w: %d analyses", ErrQuotaExceeded, view.Max)
		}
		if view.Remaining < allowed {
			allowed = view.Remaining
		}
	}

	taken := items[:allowed]
	used := account.AnalysesDone

	for i, item := range taken {
		// Guest items carry no original provider payload; the item itself
		// becomes the audit blob.
		raw, marshalErr := json.Marshal(item)
		if marshalErr != nil {
			return nil, fmt.Errorf("failed to encode guest item %d: %w", i, marshalErr)
		}

		scan := &models.ScanRecord{
			AccountID:   account.ID,
			MediaType:   "image",
			ImageURL:    item.ImageURL,
			IsDeepfake:  item.IsDeepfake,
			Confidence:  item.Confidence,
			Explanation: item.Explanation,
			RawResponse: string(raw),
			CreatedAt:   time.Now().UTC(),
		}
		if _, createErr := s.scanRepo.Create(ctx, scan); createErr != nil {
			// Partial import: earlier records exist, the counter write below
			// never happens. Known, accepted inconsistency.
			s.logger.Error("guest migration aborted mid-batch",
				zap.String("accountId", account.ID),
				zap.Int("importedBeforeFailure", i),
				zap.Error(createErr))
			return nil, fmt.Errorf("failed to import guest analysis %d of %d: %w", i+1, len(taken), createErr)
		}
		used++
	}

	// One counter write for the whole batch, free accounts only.
	if !account.IsPro() && len(taken) > 0 {
		account.AnalysesDone = used
		if err := s.accountRepo.UpdateAnalysesDone(ctx, account.ID, used); err != nil {
			return nil, fmt.Errorf("imported %d analyses but failed to update usage counter: %w", len(taken), err)
		}
	}

	skipped := len(items) - len(taken)
	message := fmt.Sprintf("Migrated %d analyses.", len(taken))
	if skipped > 0 {
		message = fmt.Sprintf("Migrated %d, skipped %d (limit).", len(taken), skipped)
	}

	s.logger.Info("guest analyses migrated",
		zap.String("accountId", account.ID),
		zap.Int("imported", len(taken)),
		zap.Int("skipped", skipped))

	return &models.MigrationResult{
		Imported: len(taken),
		Skipped:  skipped,
		Message:  message,
	}, nil
}
