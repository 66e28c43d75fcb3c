package core

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifai-backend-go/internal/models"
)

func guestBatch(n int) []models.GuestBatchItem {
	items := make([]models.GuestBatchItem, n)
	for i := range items {
		items[i] = models.GuestBatchItem{
			IsDeepfake:  i%2 == 0,
			Confidence:  float64(50 + i),
			Explanation: fmt.Sprintf("guest analysis %d", i),
		}
	}
	return items
}

func newMigrationFixture(accounts ...*models.Account) (*fakeAccountRepo, *fakeScanRepo, MigrationService) {
	accountRepo := newFakeAccountRepo(accounts...)
	scanRepo := newFakeScanRepo()
	svc := NewMigrationService(accountRepo, scanRepo, NewQuotaLedger(accountRepo, 10), nil)
	return accountRepo, scanRepo, svc
}

func TestMigrateGuestAnalysesPrefixBoundedByQuota(t *testing.T) {
	accountRepo, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 7}, // 3 remaining
	)

	result, err := svc.MigrateGuestAnalyses(context.Background(), "u1", guestBatch(5))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, "Migrated 3, skipped 2 (limit).", result.Message)

	assert.Equal(t, 3, scanRepo.createCalls)
	assert.Equal(t, 1, accountRepo.usageCalls, "one counter write for the whole batch")
	assert.Equal(t, 10, accountRepo.accounts["u1"].AnalysesDone)

	// Client-supplied order is preserved: the first three items are the ones
	// that land.
	scans, err := scanRepo.ListByAccountID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, scans, 3)
	assert.Equal(t, "guest analysis 0", scans[2].Explanation) // oldest last, list is newest-first
	assert.Equal(t, "guest analysis 2", scans[0].Explanation)
}

func TestMigrateGuestAnalysesFullBatchFits(t *testing.T) {
	accountRepo, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 0},
	)

	result, err := svc.MigrateGuestAnalyses(context.Background(), "u1", guestBatch(4))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, "Migrated 4 analyses.", result.Message)
	assert.Equal(t, 4, accountRepo.accounts["u1"].AnalysesDone)
	assert.Equal(t, 4, scanRepo.createCalls)
}

func TestMigrateGuestAnalysesQuotaExhausted(t *testing.T) {
	accountRepo, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 10},
	)

	result, err := svc.MigrateGuestAnalyses(context.Background(), "u1", guestBatch(2))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Nil(t, result)

	assert.Equal(t, 0, scanRepo.createCalls)
	assert.Equal(t, 0, accountRepo.usageCalls)
	assert.Equal(t, 10, accountRepo.accounts["u1"].AnalysesDone)
}

func TestMigrateGuestAnalysesProImportsEverything(t *testing.T) {
	accountRepo, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "p1", Role: models.RolePro, AnalysesDone: 40},
	)

	result, err := svc.MigrateGuestAnalyses(context.Background(), "p1", guestBatch(25))
	require.NoError(t, err)

	assert.Equal(t, 25, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 25, scanRepo.createCalls)
	assert.Equal(t, 0, accountRepo.usageCalls, "pro migration must not touch the counter")
	assert.Equal(t, 40, accountRepo.accounts["p1"].AnalysesDone)
}

func TestMigrateGuestAnalysesEmptyBatch(t *testing.T) {
	accountRepo, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 10}, // even exhausted
	)

	result, err := svc.MigrateGuestAnalyses(context.Background(), "u1", nil)
	require.NoError(t, err, "an empty batch is a no-op, not a quota error")

	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, "Nothing to migrate", result.Message)
	assert.Equal(t, 0, scanRepo.createCalls)
	assert.Equal(t, 0, accountRepo.usageCalls)
}

func TestMigrateGuestAnalysesUnknownAccount(t *testing.T) {
	_, _, svc := newMigrationFixture()

	_, err := svc.MigrateGuestAnalyses(context.Background(), "ghost", guestBatch(1))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMigrateGuestAnalysesMidBatchFailureSkipsCounterWrite(t *testing.T) {
	accountRepo, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 0},
	)
	scanRepo.failAfter = 2 // third create fails

	_, err := svc.MigrateGuestAnalyses(context.Background(), "u1", guestBatch(5))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)

	// Two records exist but the counter write never happened; the accepted
	// failure mode under-counts rather than over-counts.
	assert.Equal(t, 3, scanRepo.createCalls)
	assert.Len(t, scanRepo.scans, 2)
	assert.Equal(t, 0, accountRepo.usageCalls)
	assert.Equal(t, 0, accountRepo.accounts["u1"].AnalysesDone)
}

func TestMigrateGuestAnalysesRawResponseRoundTrip(t *testing.T) {
	_, scanRepo, svc := newMigrationFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 0},
	)

	item := models.GuestBatchItem{
		IsDeepfake:  true,
		Confidence:  91.2,
		Explanation: "warped background edges",
		ImageURL:    "blob:local-only",
	}
	_, err := svc.MigrateGuestAnalyses(context.Background(), "u1", []models.GuestBatchItem{item})
	require.NoError(t, err)

	scans, err := scanRepo.ListByAccountID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, scans, 1)

	// The item itself is the audit blob; it must decode back losslessly.
	var decoded models.GuestBatchItem
	require.NoError(t, json.Unmarshal([]byte(scans[0].RawResponse), &decoded))
	assert.Equal(t, item, decoded)
	assert.Equal(t, "blob:local-only", scans[0].ImageURL)
}
