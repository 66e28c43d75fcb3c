package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/models"
)

// analysisService implements the AnalysisService interface: one request-scoped
// pipeline of quota check, best-effort upload, model invocation, and
// authenticated-only persistence, in that order.
type analysisService struct {
	accountRepo db.AccountRepository
	scanRepo    db.ScanRepository
	ledger      *QuotaLedger
	invoker     ModelInvoker
	storage     ObjectStorage
	logger      *zap.Logger
}

// NewAnalysisService creates a new AnalysisService instance.
func NewAnalysisService(
	accountRepo db.AccountRepository,
	scanRepo db.ScanRepository,
	ledger *QuotaLedger,
	invoker ModelInvoker,
	storage ObjectStorage,
	logger *zap.Logger,
) AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{
		accountRepo: accountRepo,
		scanRepo:    scanRepo,
		ledger:      ledger,
		invoker:     invoker,
		storage:     storage,
		logger:      logger,
	}
}

// Analyze runs the full pipeline for one image submission.
//
// Ordering and failure semantics:
//  1. A resolved free account over quota fails fast with ErrQuotaExceeded
//     before any storage or provider cost is incurred.
//  2. The image upload is best-effort; failure (or a missing URL) degrades to
//     a record without a stored copy.
//  3. The model verdict is mandatory; its failure aborts the request.
//  4. Persistence and the quota commit happen only for resolved accounts,
//     and a persistence failure still returns the verdict with Saved=false.
func (s *analysisService) Analyze(ctx context.Context, accountID, imageSubmission string) (*models.AnalysisResult, error) {
	// Resolve the caller, if any. An authenticated caller without a synced
	// account record is treated like a guest: the analysis runs, nothing is
	// persisted.
	var account *models.Account
	if accountID != "" {
		acc, err := s.accountRepo.GetByID(ctx, accountID)
		switch {
		case err == nil:
			account = acc
		case errors.Is(err, db.ErrNotFound):
			s.logger.Warn("no account record for authenticated caller, continuing unsaved",
				zap.String("accountId", accountID))
		default:
			return nil, fmt.Errorf("failed to resolve account '%s': %w", accountID, err)
		}
	}

	if account != nil {
		if allowed, view := s.ledger.CheckAndReserve(account); !allowed {
			return nil, fmt.Errorf("%w: %d of %d analyses used", ErrQuotaExceeded, view.Used, view.Max)
		}
	}

	mimeType, payload, err := DecodeImagePayload(imageSubmission)
	if err != nil {
		return nil, err
	}

	// Best-effort upload. The analysis itself is the deliverable; persistence
	// of the picture is not worth aborting over. An upload that "succeeds"
	// without returning a URL degrades the same way.
	var imageURL string
	if url, upErr := s.storage.UploadImage(ctx, payload, mimeType); upErr != nil {
		s.logger.Warn("image upload failed, continuing without a stored copy",
			zap.String("accountId", accountID), zap.Error(upErr))
	} else if url == "" {
		s.logger.Warn("storage returned no URL, continuing without a stored copy",
			zap.String("accountId", accountID))
	} else {
		imageURL = url
	}

	verdict, err := s.invoker.Invoke(ctx, payload, mimeType)
	if err != nil {
		return nil, fmt.Errorf("deepfake analysis failed: %w", err)
	}

	result := &models.AnalysisResult{
		IsDeepfake:  verdict.IsDeepfake,
		Confidence:  verdict.Confidence,
		Explanation: verdict.Explanation,
	}
	if imageURL != "" {
		result.ImageURL = &imageURL
	}

	if account != nil {
		scan := &models.ScanRecord{
			AccountID:   account.ID,
			MediaType:   "image",
			ImageURL:    imageURL,
			IsDeepfake:  verdict.IsDeepfake,
			Confidence:  verdict.Confidence,
			Explanation: verdict.Explanation,
			RawResponse: verdict.Raw,
			CreatedAt:   time.Now().UTC(),
		}
		scanID, saveErr := s.scanRepo.Create(ctx, scan)
		if saveErr != nil {
			// Persistence failure is surfaced distinctly from verdict failure:
			// the caller still gets the verdict, Saved stays false.
			s.logger.Error("failed to persist scan record",
				zap.String("accountId", account.ID), zap.Error(saveErr))
		} else {
			result.Saved = true
			result.ScanID = &scanID
			if commitErr := s.ledger.Commit(ctx, account); commitErr != nil {
				s.logger.Error("failed to commit quota usage after scan save",
					zap.String("accountId", account.ID),
					zap.String("scanId", scanID),
					zap.Error(commitErr))
			}
		}
	}

	return result, nil
}
