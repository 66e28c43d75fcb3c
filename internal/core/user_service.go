package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"verifai-backend-go/internal/db"
	"verifai-backend-go/internal/models"
)

// ErrUserNotFound is returned when an account is not found.
var ErrUserNotFound = errors.New("user not found")

// maxNameLength caps profile names, matching what the clients render.
const maxNameLength = 80

// userService implements the UserService interface.
type userService struct {
	accountRepo db.AccountRepository
	ledger      *QuotaLedger
}

// NewUserService creates a new UserService instance.
func NewUserService(accountRepo db.AccountRepository, ledger *QuotaLedger) UserService {
	return &userService{accountRepo: accountRepo, ledger: ledger}
}

// GetOrCreate retrieves an account by ID, creating it lazily on first
// authenticated contact. New accounts start on the free plan with zero
// analyses consumed. Returns the account and whether it was created.
func (s *userService) GetOrCreate(ctx context.Context, accountID, email, name string) (*models.Account, bool, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get account by ID '%s' from repository: %w", accountID, err)
	}

	// Not found: create with sane defaults. The identity provider does not
	// always surface an email claim, so fall back to a placeholder the way
	// the clients expect.
	if email = strings.TrimSpace(email); email == "" {
		email = accountID + "@example.com"
	}
	if name = sanitizeName(name); name == "" {
		name = "User"
	}

	newAccount := &models.Account{
		ID:           accountID,
		Email:        email,
		Name:         name,
		Role:         models.RoleFree,
		AnalysesDone: 0,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if createErr := s.accountRepo.Create(ctx, newAccount); createErr != nil {
		return nil, false, fmt.Errorf("failed to create account (id: %s) after not found: %w", accountID, createErr)
	}
	return newAccount, true, nil
}

// GetByID retrieves an account by its ID.
func (s *userService) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: account with ID '%s'", ErrUserNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to get account by ID '%s' from repository: %w", accountID, err)
	}
	return account, nil
}

// UpdateName updates the account's display name.
func (s *userService) UpdateName(ctx context.Context, accountID, name string) (*models.Account, error) {
	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.Name = sanitizeName(name)
	account.UpdatedAt = time.Now().UTC()
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account '%s': %w", accountID, err)
	}
	return account, nil
}

// Quota returns the caller's derived quota projection.
func (s *userService) Quota(ctx context.Context, accountID string) (*models.QuotaView, error) {
	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	view := s.ledger.View(account)
	return &view, nil
}

// sanitizeName trims whitespace and enforces the profile name cap.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}
