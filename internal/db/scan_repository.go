package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"verifai-backend-go/internal/models"
)

const scansCollection = "scans"

// firestoreScanRepository implements the ScanRepository interface using Firestore.
type firestoreScanRepository struct {
	client *firestore.Client
}

// NewFirestoreScanRepository creates a new instance of firestoreScanRepository.
func NewFirestoreScanRepository(client *firestore.Client) ScanRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ScanRepository.")
	}
	return &firestoreScanRepository{client: client}
}

// Create adds a new scan document to Firestore with an auto-generated ID.
// It sets scan.ID with the new document ID before creation.
// CreatedAt is populated server-side via the serverTimestamp tag.
func (r *firestoreScanRepository) Create(ctx context.Context, scan *models.ScanRecord) (string, error) {
	if scan.AccountID == "" {
		return "", errors.New("scan accountID cannot be empty for Create operation")
	}
	docRef := r.client.Collection(scansCollection).NewDoc()
	scan.ID = docRef.ID // Set the ID in the model before saving

	if _, err := docRef.Create(ctx, scan); err != nil {
		return "", fmt.Errorf("failed to create scan record: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a scan document from Firestore by its ID.
func (r *firestoreScanRepository) GetByID(ctx context.Context, scanID string) (*models.ScanRecord, error) {
	if scanID == "" {
		return nil, errors.New("scanID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(scansCollection).Doc(scanID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("scan with ID '%s' not found: %w", scanID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get scan with ID '%s': %w", scanID, err)
	}

	var scan models.ScanRecord
	if err := docSnap.DataTo(&scan); err != nil {
		return nil, fmt.Errorf("failed to decode scan data for ID '%s': %w", scanID, err)
	}
	scan.ID = docSnap.Ref.ID

	return &scan, nil
}

// ListByAccountID retrieves all scan records owned by an account, newest first.
func (r *firestoreScanRepository) ListByAccountID(ctx context.Context, accountID string) ([]*models.ScanRecord, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccountID operation")
	}

	query := r.client.Collection(scansCollection).
		Where("accountId", "==", accountID).
		OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var scans []*models.ScanRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate scans for account '%s': %w", accountID, err)
		}

		var scan models.ScanRecord
		if err := doc.DataTo(&scan); err != nil {
			// Log and skip the problematic document rather than failing the whole listing.
			log.Printf("Error decoding scan data (ID: %s) for account '%s': %v. Skipping.", doc.Ref.ID, accountID, err)
			continue
		}
		scan.ID = doc.Ref.ID
		scans = append(scans, &scan)
	}

	return scans, nil
}

// Delete removes a scan document from Firestore by its ID.
// Ownership checks belong to the service layer; this is a raw delete.
func (r *firestoreScanRepository) Delete(ctx context.Context, scanID string) error {
	if scanID == "" {
		return errors.New("scanID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(scansCollection).Doc(scanID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete scan with ID '%s': %w", scanID, err)
	}
	return nil
}
