package models

import "time"

// Account roles. Free accounts are capped by the quota ledger,
// pro accounts are exempt from quota arithmetic entirely.
const (
	RoleFree = "free"
	RolePro  = "pro"
)

// Account represents a user account in the system.
// It is created lazily on first authenticated contact and keyed by the
// identity provider's stable user identifier (Firebase Auth UID).
type Account struct {
	ID           string    `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email        string    `json:"email" firestore:"email"`
	Name         string    `json:"name,omitempty" firestore:"name"`
	Role         string    `json:"role" firestore:"role"` // "free" or "pro"
	AnalysesDone int       `json:"analysesDone" firestore:"analysesDone"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsPro reports whether the account has unlimited analyses.
// Anything that is not explicitly "pro" is treated as free.
func (a *Account) IsPro() bool {
	return a.Role == RolePro
}

// QuotaView is a derived projection of an account's analysis quota.
// It is never stored; the ledger builds it on demand.
type QuotaView struct {
	Role      string `json:"role"`
	Used      int    `json:"used"`
	Max       int    `json:"max"` // 0 when Unlimited
	Remaining int    `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
}
