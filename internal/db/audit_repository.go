package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"bonusthoughts-backend/internal/models"
)

const auditLogsCollection = "audit_logs"

// firestoreAuditRepository implements the AuditRepository interface using Firestore.
type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new instance of firestoreAuditRepository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

// Create appends an audit log entry with an auto-generated ID.
func (r *firestoreAuditRepository) Create(ctx context.Context, entry models.AuditLog) error {
	if _, _, err := r.client.Collection(auditLogsCollection).Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}
