package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"verifai-backend-go/internal/models"
)

const accountsCollection = "users"

// ErrNotFound is a common error for when a document is not found in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreAccountRepository implements the AccountRepository interface using Firestore.
type firestoreAccountRepository struct {
	client *firestore.Client
}

// NewFirestoreAccountRepository creates a new instance of firestoreAccountRepository.
func NewFirestoreAccountRepository(client *firestore.Client) AccountRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AccountRepository.")
	}
	return &firestoreAccountRepository{client: client}
}

// Create adds a new account document to Firestore.
// The account.ID (Firebase Auth UID) is used as the Firestore document ID.
// CreatedAt and UpdatedAt are populated server-side via the serverTimestamp tags.
func (r *firestoreAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		return errors.New("account ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(account.ID).Create(ctx, account)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("account with ID '%s' already exists: %w", account.ID, err)
		}
		return fmt.Errorf("failed to create account with ID '%s': %w", account.ID, err)
	}
	return nil
}

// GetByID retrieves an account document from Firestore by its ID (Firebase Auth UID).
func (r *firestoreAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(accountsCollection).Doc(accountID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account with ID '%s': %w", accountID, err)
	}

	var account models.Account
	if err := docSnap.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to decode account data for ID '%s': %w", accountID, err)
	}
	account.ID = docSnap.Ref.ID // Ensure ID is populated from the document reference ID

	return &account, nil
}

// Update overwrites an existing account document with the given state.
// Set with MergeAll keeps this safe if the struct ever carries partial state.
func (r *firestoreAccountRepository) Update(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		return errors.New("account ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(account.ID).Set(ctx, account, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update account with ID '%s': %w", account.ID, err)
	}
	return nil
}

// UpdateAnalysesDone writes only the analysesDone counter for the account.
func (r *firestoreAccountRepository) UpdateAnalysesDone(ctx context.Context, accountID string, analysesDone int) error {
	if accountID == "" {
		return errors.New("accountID cannot be empty for UpdateAnalysesDone operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(accountID).Update(ctx, []firestore.Update{
		{Path: "analysesDone", Value: analysesDone},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
		}
		return fmt.Errorf("failed to update analysesDone for account '%s': %w", accountID, err)
	}
	return nil
}
