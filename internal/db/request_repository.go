package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"bonusthoughts-backend/internal/models"
)

const requestsCollection = "requests"

// firestoreRequestRepository implements the RequestRepository interface
// using Firestore. Support requests are create-only.
type firestoreRequestRepository struct {
	client *firestore.Client
}

// NewFirestoreRequestRepository creates a new instance of firestoreRequestRepository.
func NewFirestoreRequestRepository(client *firestore.Client) RequestRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for RequestRepository.")
	}
	return &firestoreRequestRepository{client: client}
}

// Create appends a support request document with an auto-generated ID.
// CreatedAt is server-assigned.
func (r *firestoreRequestRepository) Create(ctx context.Context, req *models.SupportRequest) (string, error) {
	if req.UserID == "" {
		return "", errors.New("userID cannot be empty for support request creation")
	}
	docRef := r.client.Collection(requestsCollection).NewDoc()
	req.ID = docRef.ID

	if _, err := docRef.Create(ctx, req); err != nil {
		return "", fmt.Errorf("failed to create support request for user '%s': %w", req.UserID, err)
	}
	return docRef.ID, nil
}
