package models

import "time"

// SupportRequest is a free-text request a user attaches to one of their
// active deployments. Create-only; no lifecycle beyond "pending".
type SupportRequest struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      string    `json:"userId" firestore:"userId"`
	UserEmail   string    `json:"userEmail" firestore:"userEmail"`
	ProductID   string    `json:"productId" firestore:"productId"`
	ProductName string    `json:"productName" firestore:"productName"` // denormalized for support triage
	Message     string    `json:"message" firestore:"message"`
	Status      string    `json:"status" firestore:"status"` // always "pending"
	Ticket      string    `json:"ticket" firestore:"ticket"` // server-assigned, unique
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
