package models

import "time"

// ScanRecord represents one completed deepfake analysis owned by an account.
// Records are immutable after creation except for deletion by their owner.
type ScanRecord struct {
	ID          string    `json:"id" firestore:"-"`
	AccountID   string    `json:"accountId" firestore:"accountId"`
	MediaType   string    `json:"mediaType" firestore:"mediaType"` // currently always "image"
	ImageURL    string    `json:"imageUrl,omitempty" firestore:"imageUrl"` // empty when the upload failed
	IsDeepfake  bool      `json:"isDeepfake" firestore:"isDeepfake"`
	Confidence  float64   `json:"confidence" firestore:"confidence"` // 0..100
	Explanation string    `json:"explanation" firestore:"explanation"`
	RawResponse string    `json:"rawResponse,omitempty" firestore:"rawResponse"` // opaque provider payload, kept for audits
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// AnalysisResult is the outcome of one analysis request.
// Saved and ScanID reflect whether persistence happened, independent of the
// verdict itself: an anonymous caller gets Saved=false with a full verdict.
type AnalysisResult struct {
	ImageURL    *string `json:"imageUrl"`
	IsDeepfake  bool    `json:"isDeepfake"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	Saved       bool    `json:"saved"`
	ScanID      *string `json:"scanId"`
}

// GuestBatchItem is one locally-held anonymous analysis submitted for
// migration into an authenticated account. It has no server identity until
// it is imported as a ScanRecord.
type GuestBatchItem struct {
	IsDeepfake  bool    `json:"isDeepfake"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// MigrationResult summarizes a guest batch import.
type MigrationResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}
