package core

import (
	"context"
	"errors"
	"fmt"

	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/models"
)

// DefaultFreeAnalyses is the analysis cap for free accounts when no limit is
// configured.
const DefaultFreeAnalyses = 10

// ErrQuotaExceeded is returned when a free account has no analyses remaining.
// It is a distinct, user-facing condition (the client renders an upgrade
// prompt), never a generic failure.
var ErrQuotaExceeded = errors.New("free plan analysis limit reached")

// QuotaLedger tracks how many analyses an account has consumed and whether it
// is capped. Pro accounts are exempt from quota arithmetic entirely.
//
// The check-then-commit pair is deliberately not atomic: two concurrent
// requests from the same free account can both pass CheckAndReserve before
// either Commit lands, permitting transient over-quota usage by one unit.
// This bounded inconsistency is accepted; no lock or transaction is added.
type QuotaLedger struct {
	accountRepo db.AccountRepository
	freeMax     int
}

// NewQuotaLedger creates a ledger with the given free-plan cap.
// A non-positive cap falls back to DefaultFreeAnalyses.
func NewQuotaLedger(accountRepo db.AccountRepository, freeMax int) *QuotaLedger {
	if freeMax <= 0 {
		freeMax = DefaultFreeAnalyses
	}
	return &QuotaLedger{accountRepo: accountRepo, freeMax: freeMax}
}

// FreeMax returns the configured free-plan cap.
func (l *QuotaLedger) FreeMax() int {
	return l.freeMax
}

// View builds the derived quota projection for an account.
func (l *QuotaLedger) View(account *models.Account) models.QuotaView {
	if account.IsPro() {
		return models.QuotaView{Role: models.RolePro, Used: account.AnalysesDone, Unlimited: true}
	}
	remaining := l.freeMax - account.AnalysesDone
	if remaining < 0 {
		remaining = 0
	}
	return models.QuotaView{
		Role:      models.RoleFree,
		Used:      account.AnalysesDone,
		Max:       l.freeMax,
		Remaining: remaining,
	}
}

// CheckAndReserve reports whether the account may run one more analysis.
// The "reserve" is advisory only; nothing is written until Commit.
func (l *QuotaLedger) CheckAndReserve(account *models.Account) (bool, models.QuotaView) {
	view := l.View(account)
	if view.Unlimited {
		return true, view
	}
	return view.Remaining > 0, view
}

// Commit records one consumed analysis for the account, persisting the new
// counter. No-op for pro accounts: their counter is never consulted or
// mutated by quota arithmetic.
func (l *QuotaLedger) Commit(ctx context.Context, account *models.Account) error {
	if account.IsPro() {
		return nil
	}
	account.AnalysesDone++
	if err := l.accountRepo.UpdateAnalysesDone(ctx, account.ID, account.AnalysesDone); err != nil {
		return fmt.Errorf("failed to commit quota usage for account '%s': %w", account.ID, err)
	}
	return nil
}
