package models

// AnalyzeRequest represents the JSON request body for an analysis.
// ImageBase64 accepts either a full data URL or raw base64 image bytes.
// (The analyze endpoint also accepts a multipart "file" upload instead.)
type AnalyzeRequest struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
}

// MigrateGuestAnalysesRequest represents the request body for migrating
// locally-held guest analyses into the authenticated account.
type MigrateGuestAnalysesRequest struct {
	Items []GuestBatchItem `json:"items" binding:"required"`
}

// SyncAccountRequest carries optional overrides for the lazy account-create
// performed after a client-side sign-in. Either field may be empty; the
// verified token claims are the canonical source.
type SyncAccountRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UpdateProfileRequest represents the request body for updating the caller's
// profile. A pointer distinguishes "not provided" from an empty value.
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty"`
}
