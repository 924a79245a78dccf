package models

import "time"

// User is the mirrored profile document for a Firebase Auth account.
// It exists so the admin console can resolve email -> uid when targeting
// deployments; identity itself is owned by Firebase Auth.
type User struct {
	ID       string    `json:"id" firestore:"-"`        // Firebase Auth UID, used as the document ID
	Email    string    `json:"email" firestore:"email"` // stored lower-cased for matching
	IsAdmin  bool      `json:"isAdmin" firestore:"isAdmin"`
	LastSeen time.Time `json:"lastSeen" firestore:"lastSeen,serverTimestamp"`
}
