package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/models"
)

// ErrScanNotFound is returned when a scan record does not exist or does not
// belong to the caller. Foreign-owner access is indistinguishable from
// not-found on purpose: report IDs are not probeable.
var ErrScanNotFound = errors.New("analysis report not found")

// reportService implements the ReportService interface.
type reportService struct {
	scanRepo db.ScanRepository
	logger   *zap.Logger
}

// NewReportService creates a new ReportService instance.
func NewReportService(scanRepo db.ScanRepository, logger *zap.Logger) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reportService{scanRepo: scanRepo, logger: logger}
}

// ListReports returns the account's scan records, newest first.
func (s *reportService) ListReports(ctx context.Context, accountID string) ([]*models.ScanRecord, error) {
	scans, err := s.scanRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for account '%s': %w", accountID, err)
	}
	return scans, nil
}

// DeleteReport removes a scan record after verifying the caller owns it.
func (s *reportService) DeleteReport(ctx context.Context, accountID, reportID string) error {
	scan, err := s.scanRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrScanNotFound, reportID)
		}
		return fmt.Errorf("failed to load report '%s': %w", reportID, err)
	}
	if scan.AccountID != accountID {
		return fmt.Errorf("%w: '%s'", ErrScanNotFound, reportID)
	}

	if err := s.scanRepo.Delete(ctx, reportID); err != nil {
		return fmt.Errorf("failed to delete report '%s': %w", reportID, err)
	}

	s.logger.Info("report deleted",
		zap.String("accountId", accountID),
		zap.String("reportId", reportID))
	return nil
}
