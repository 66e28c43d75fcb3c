package core

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifai-backend-go/internal/detector"
	"verifai-backend-go/internal/models"
)

var testSubmission = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))

func testVerdict() *detector.Verdict {
	return &detector.Verdict{
		IsDeepfake:  true,
		Confidence:  87.5,
		Explanation: "Inconsistent lighting around the jawline.",
		Raw:         `{"isDeepfake":true,"confidence":87.5,"explanation":"Inconsistent lighting around the jawline."}`,
	}
}

func newAnalysisFixture(accounts ...*models.Account) (*fakeAccountRepo, *fakeScanRepo, *fakeStorage, *fakeInvoker, AnalysisService) {
	accountRepo := newFakeAccountRepo(accounts...)
	scanRepo := newFakeScanRepo()
	storage := &fakeStorage{url: "https://storage.example.com/verifai/abc.png"}
	invoker := &fakeInvoker{verdict: testVerdict()}
	ledger := NewQuotaLedger(accountRepo, 10)
	svc := NewAnalysisService(accountRepo, scanRepo, ledger, invoker, storage, nil)
	return accountRepo, scanRepo, storage, invoker, svc
}

func TestAnalyzeFreeAccountHappyPath(t *testing.T) {
	accountRepo, scanRepo, _, invoker, svc := newAnalysisFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 2},
	)

	result, err := svc.Analyze(context.Background(), "u1", testSubmission)
	require.NoError(t, err)

	assert.True(t, result.IsDeepfake)
	assert.Equal(t, 87.5, result.Confidence)
	assert.True(t, result.Saved)
	require.NotNil(t, result.ScanID)
	require.NotNil(t, result.ImageURL)
	assert.Equal(t, "https://storage.example.com/verifai/abc.png", *result.ImageURL)

	assert.Equal(t, 1, invoker.invokeCalls)
	assert.Equal(t, 1, scanRepo.createCalls)
	assert.Equal(t, 3, accountRepo.accounts["u1"].AnalysesDone, "counter committed after save")

	saved, err := scanRepo.GetByID(context.Background(), *result.ScanID)
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.AccountID)
	assert.Equal(t, "image", saved.MediaType)
	assert.Equal(t, testVerdict().Raw, saved.RawResponse, "raw provider payload kept for audits")
}

func TestAnalyzeQuotaExceededFailsFast(t *testing.T) {
	_, scanRepo, storage, invoker, svc := newAnalysisFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 10},
	)

	result, err := svc.Analyze(context.Background(), "u1", testSubmission)
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Nil(t, result)

	// The rejection must cost nothing downstream.
	assert.Equal(t, 0, storage.uploadCalls)
	assert.Equal(t, 0, invoker.invokeCalls)
	assert.Equal(t, 0, scanRepo.createCalls)
}

func TestAnalyzeLastFreeSlotThenBlocked(t *testing.T) {
	accountRepo, _, _, _, svc := newAnalysisFixture(
		&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 9},
	)

	result, err := svc.Analyze(context.Background(), "u1", testSubmission)
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.Equal(t, 10, accountRepo.accounts["u1"].AnalysesDone)

	_, err = svc.Analyze(context.Background(), "u1", testSubmission)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestAnalyzeProAccountNeverTouchesCounter(t *testing.T) {
	accountRepo, scanRepo, _, _, svc := newAnalysisFixture(
		&models.Account{ID: "p1", Role: models.RolePro, AnalysesDone: 500},
	)

	result, err := svc.Analyze(context.Background(), "p1", testSubmission)
	require.NoError(t, err)
	assert.True(t, result.Saved)

	assert.Equal(t, 1, scanRepo.createCalls)
	assert.Equal(t, 0, accountRepo.usageCalls, "pro analyses must not write the usage counter")
	assert.Equal(t, 500, accountRepo.accounts["p1"].AnalysesDone)
}

func TestAnalyzeGuestGetsVerdictWithoutPersistence(t *testing.T) {
	accountRepo, scanRepo, _, invoker, svc := newAnalysisFixture()

	result, err := svc.Analyze(context.Background(), "", testSubmission)
	require.NoError(t, err)

	assert.True(t, result.IsDeepfake)
	assert.False(t, result.Saved)
	assert.Nil(t, result.ScanID)

	assert.Equal(t, 1, invoker.invokeCalls)
	assert.Equal(t, 0, accountRepo.getCalls, "guest requests must not hit the account repository")
	assert.Equal(t, 0, scanRepo.createCalls)
}

func TestAnalyzeUnknownAuthenticatedAccountDegradesToGuest(t *testing.T) {
	_, scanRepo, _, _, svc := newAnalysisFixture() // no accounts seeded

	result, err := svc.Analyze(context.Background(), "ghost", testSubmission)
	require.NoError(t, err)
	assert.False(t, result.Saved)
	assert.Equal(t, 0, scanRepo.createCalls)
}

func TestAnalyzeStorageFailureDegradesGracefully(t *testing.T) {
	accountRepo := newFakeAccountRepo(&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 0})
	scanRepo := newFakeScanRepo()
	storage := &fakeStorage{err: errors.New("bucket unavailable")}
	invoker := &fakeInvoker{verdict: testVerdict()}
	svc := NewAnalysisService(accountRepo, scanRepo, NewQuotaLedger(accountRepo, 10), invoker, storage, nil)

	result, err := svc.Analyze(context.Background(), "u1", testSubmission)
	require.NoError(t, err, "upload failure must not abort the analysis")

	assert.Nil(t, result.ImageURL)
	assert.True(t, result.Saved, "the record is still persisted, just without a stored copy")

	saved, err := scanRepo.GetByID(context.Background(), *result.ScanID)
	require.NoError(t, err)
	assert.Empty(t, saved.ImageURL)
}

func TestAnalyzeInvokerFailureAborts(t *testing.T) {
	accountRepo := newFakeAccountRepo(&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 0})
	scanRepo := newFakeScanRepo()
	invoker := &fakeInvoker{err: detector.ErrAllModelsFailed}
	svc := NewAnalysisService(accountRepo, scanRepo, NewQuotaLedger(accountRepo, 10), invoker, &fakeStorage{url: "u"}, nil)

	result, err := svc.Analyze(context.Background(), "u1", testSubmission)
	require.ErrorIs(t, err, detector.ErrAllModelsFailed)
	assert.Nil(t, result)

	assert.Equal(t, 0, scanRepo.createCalls, "no record without a verdict")
	assert.Equal(t, 0, accountRepo.usageCalls, "no quota spend without a verdict")
}

func TestAnalyzePersistenceFailureStillReturnsVerdict(t *testing.T) {
	accountRepo := newFakeAccountRepo(&models.Account{ID: "u1", Role: models.RoleFree, AnalysesDone: 2})
	scanRepo := newFakeScanRepo()
	scanRepo.createErr = errors.New("firestore write failed")
	invoker := &fakeInvoker{verdict: testVerdict()}
	svc := NewAnalysisService(accountRepo, scanRepo, NewQuotaLedger(accountRepo, 10), invoker, &fakeStorage{url: "u"}, nil)

	result, err := svc.Analyze(context.Background(), "u1", testSubmission)
	require.NoError(t, err, "the verdict is the deliverable; persistence failure degrades")

	assert.True(t, result.IsDeepfake)
	assert.False(t, result.Saved)
	assert.Nil(t, result.ScanID)
	assert.Equal(t, 0, accountRepo.usageCalls, "quota must not be charged for an unsaved analysis")
	assert.Equal(t, 2, accountRepo.accounts["u1"].AnalysesDone)
}

func TestAnalyzeRejectsBadSubmissions(t *testing.T) {
	_, _, storage, invoker, svc := newAnalysisFixture()

	_, err := svc.Analyze(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = svc.Analyze(context.Background(), "", "%%%not-base64%%%")
	assert.Error(t, err)

	assert.Equal(t, 0, storage.uploadCalls)
	assert.Equal(t, 0, invoker.invokeCalls)
}
