package core

import (
	"context"
	"fmt"

	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/detector"
	"verifai-backend-go/internal/models"
)

// In-memory fakes for the repository and collaborator interfaces, with call
// counters so tests can assert on side effects and short-circuiting.

type fakeAccountRepo struct {
	accounts map[string]*models.Account

	getCalls    int
	createCalls int
	updateCalls int
	usageCalls  int

	getErr   error
	usageErr error
}

func newFakeAccountRepo(accounts ...*models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*models.Account)}
	for _, a := range accounts {
		repo.accounts[a.ID] = a
	}
	return repo
}

func (r *fakeAccountRepo) GetByID(_ context.Context, accountID string) (*models.Account, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	account, ok := r.accounts[accountID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	r.createCalls++
	if _, exists := r.accounts[account.ID]; exists {
		return fmt.Errorf("account %q already exists", account.ID)
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) Update(_ context.Context, account *models.Account) error {
	r.updateCalls++
	if _, exists := r.accounts[account.ID]; !exists {
		return db.ErrNotFound
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) UpdateAnalysesDone(_ context.Context, accountID string, analysesDone int) error {
	r.usageCalls++
	if r.usageErr != nil {
		return r.usageErr
	}
	account, ok := r.accounts[accountID]
	if !ok {
		return db.ErrNotFound
	}
	account.AnalysesDone = analysesDone
	return nil
}

type fakeScanRepo struct {
	scans map[string]*models.ScanRecord
	order []string // insertion order of IDs

	createCalls int
	deleteCalls int

	createErr error
	// failAfter aborts Create once createCalls exceeds it (0 disables).
	failAfter int
}

func newFakeScanRepo() *fakeScanRepo {
	return &fakeScanRepo{scans: make(map[string]*models.ScanRecord)}
}

func (r *fakeScanRepo) Create(_ context.Context, scan *models.ScanRecord) (string, error) {
	r.createCalls++
	if r.createErr != nil {
		return "", r.createErr
	}
	if r.failAfter > 0 && r.createCalls > r.failAfter {
		return "", fmt.Errorf("simulated write failure on call %d", r.createCalls)
	}
	id := fmt.Sprintf("scan-%d", len(r.order)+1)
	cp := *scan
	cp.ID = id
	r.scans[id] = &cp
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeScanRepo) GetByID(_ context.Context, scanID string) (*models.ScanRecord, error) {
	scan, ok := r.scans[scanID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *scan
	return &cp, nil
}

func (r *fakeScanRepo) ListByAccountID(_ context.Context, accountID string) ([]*models.ScanRecord, error) {
	var out []*models.ScanRecord
	// Newest first, mirroring the Firestore query's ordering.
	for i := len(r.order) - 1; i >= 0; i-- {
		scan := r.scans[r.order[i]]
		if scan.AccountID == accountID {
			cp := *scan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScanRepo) Delete(_ context.Context, scanID string) error {
	r.deleteCalls++
	if _, ok := r.scans[scanID]; !ok {
		return db.ErrNotFound
	}
	delete(r.scans, scanID)
	return nil
}

type fakeStorage struct {
	uploadCalls int
	url         string
	err         error
}

func (s *fakeStorage) UploadImage(_ context.Context, _ []byte, _ string) (string, error) {
	s.uploadCalls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type fakeInvoker struct {
	invokeCalls int
	verdict     *detector.Verdict
	err         error
}

func (f *fakeInvoker) Invoke(_ context.Context, _ []byte, _ string) (*detector.Verdict, error) {
	f.invokeCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}
