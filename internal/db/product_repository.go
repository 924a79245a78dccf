package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bonusthoughts-backend/internal/models"
)

const (
	pendingProductsCollection = "pending_products"
	productsSubcollection     = "products"
)

// firestoreProductRepository implements the ProductRepository interface
// using Firestore. Active deployments live in users/{uid}/products;
// pending deployments live in the flat pending_products collection.
type firestoreProductRepository struct {
	client *firestore.Client
}

// NewFirestoreProductRepository creates a new instance of firestoreProductRepository.
func NewFirestoreProductRepository(client *firestore.Client) ProductRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ProductRepository.")
	}
	return &firestoreProductRepository{client: client}
}

// ownedProducts returns the active-deployment subcollection for a user.
func (r *firestoreProductRepository) ownedProducts(ownerID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(ownerID).Collection(productsSubcollection)
}

// docRef resolves a tagged reference to its Firestore document.
func (r *firestoreProductRepository) docRef(ref models.ProductRef) (*firestore.DocumentRef, error) {
	if ref.ID == "" {
		return nil, errors.New("product reference has an empty document ID")
	}
	switch ref.Scope {
	case models.ScopePending:
		return r.client.Collection(pendingProductsCollection).Doc(ref.ID), nil
	case models.ScopeActive:
		if ref.OwnerID == "" {
			return nil, errors.New("active product reference has an empty owner ID")
		}
		return r.ownedProducts(ref.OwnerID).Doc(ref.ID), nil
	default:
		return nil, fmt.Errorf("unknown deployment scope '%s'", ref.Scope)
	}
}

// CreateActive adds a new deployment document to the owner's subcollection
// with an auto-generated ID. CreatedAt is server-assigned.
func (r *firestoreProductRepository) CreateActive(ctx context.Context, ownerID string, product *models.Product) (string, error) {
	if ownerID == "" {
		return "", errors.New("ownerID cannot be empty for CreateActive operation")
	}
	docRef := r.ownedProducts(ownerID).NewDoc()
	product.ID = docRef.ID
	product.OwnerID = ownerID

	// CreatedAt is zero here; the serverTimestamp tag fills it on write.
	if _, err := docRef.Create(ctx, product); err != nil {
		return "", fmt.Errorf("failed to create deployment for owner '%s': %w", ownerID, err)
	}
	return docRef.ID, nil
}

// CreatePending adds a pre-provisioned deployment keyed by target email.
// The email is normalized to lower-case and trimmed before storage so that
// the reconciliation query at login time matches exactly.
func (r *firestoreProductRepository) CreatePending(ctx context.Context, pending *models.PendingProduct) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(pending.TargetEmail))
	if !strings.Contains(normalized, "@") {
		return "", fmt.Errorf("target email '%s': %w", pending.TargetEmail, ErrInvalidEmail)
	}
	pending.TargetEmail = normalized

	docRef := r.client.Collection(pendingProductsCollection).NewDoc()
	pending.ID = docRef.ID

	if _, err := docRef.Create(ctx, pending); err != nil {
		return "", fmt.Errorf("failed to create pending deployment for '%s': %w", normalized, err)
	}
	return docRef.ID, nil
}

// ListActiveByOwner retrieves all deployments owned by a user. An owner
// with none yields an empty slice, not an error.
func (r *firestoreProductRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]*models.Product, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for ListActiveByOwner operation")
	}

	iter := r.ownedProducts(ownerID).Documents(ctx)
	defer iter.Stop()

	products := []*models.Product{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate deployments for owner '%s': %w", ownerID, err)
		}

		var product models.Product
		if err := doc.DataTo(&product); err != nil {
			log.Printf("Error decoding deployment (ID: %s) for owner '%s': %v. Skipping.", doc.Ref.ID, ownerID, err)
			continue
		}
		product.ID = doc.Ref.ID
		product.OwnerID = ownerID
		products = append(products, &product)
	}

	return products, nil
}

// ListActiveByOwnerEmail resolves the email to a profile first and then
// lists that owner's deployments. Wraps ErrNotFound when no profile
// matches; callers in search flows treat that as zero deployments.
func (r *firestoreProductRepository) ListActiveByOwnerEmail(ctx context.Context, email string) ([]*models.Product, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, errors.New("email cannot be empty for ListActiveByOwnerEmail operation")
	}

	iter := r.client.Collection(usersCollection).Where("email", "==", normalized).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no profile for email '%s': %w", normalized, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve email '%s' to a profile: %w", normalized, err)
	}

	return r.ListActiveByOwner(ctx, doc.Ref.ID)
}

// ListPendingByEmail retrieves all pending deployments whose target email
// equals the normalized search email.
func (r *firestoreProductRepository) ListPendingByEmail(ctx context.Context, email string) ([]*models.PendingProduct, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, errors.New("email cannot be empty for ListPendingByEmail operation")
	}

	iter := r.client.Collection(pendingProductsCollection).Where("targetEmail", "==", normalized).Documents(ctx)
	defer iter.Stop()

	pending := []*models.PendingProduct{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate pending deployments for '%s': %w", normalized, err)
		}

		var p models.PendingProduct
		if err := doc.DataTo(&p); err != nil {
			log.Printf("Error decoding pending deployment (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		p.ID = doc.Ref.ID
		pending = append(pending, &p)
	}

	return pending, nil
}

// MigratePending moves pending deployments into the owner's active
// subcollection. For every pending document the batch creates a fresh
// active document (new ID, server-assigned createdAt, attributes copied
// verbatim) and deletes the pending one. The batch commit is all-or-
// nothing: on failure no deployment has moved, and because the delete is
// part of the same unit no deployment can ever be migrated twice.
func (r *firestoreProductRepository) MigratePending(ctx context.Context, ownerID string, pending []*models.PendingProduct) error {
	if ownerID == "" {
		return errors.New("ownerID cannot be empty for MigratePending operation")
	}
	if len(pending) == 0 {
		return nil
	}

	batch := r.client.Batch()
	owned := r.ownedProducts(ownerID)
	for _, p := range pending {
		if p.ID == "" {
			return fmt.Errorf("pending deployment '%s' has no document ID; refusing to migrate", p.Name)
		}
		batch.Create(owned.NewDoc(), &models.Product{
			Name:        p.Name,
			Status:      p.Status,
			Version:     p.Version,
			NextRenewal: p.NextRenewal,
		})
		batch.Delete(r.client.Collection(pendingProductsCollection).Doc(p.ID))
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration batch for owner '%s': %w", ownerID, err)
	}
	return nil
}

// Update applies a partial update to the referenced document. The patch
// type restricts writes to the mutable attributes; identifier, owner and
// createdAt cannot be expressed and therefore cannot change.
func (r *firestoreProductRepository) Update(ctx context.Context, ref models.ProductRef, patch models.ProductPatch) error {
	docRef, err := r.docRef(ref)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return nil
	}

	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: *patch.Status})
	}
	if patch.Version != nil {
		updates = append(updates, firestore.Update{Path: "version", Value: *patch.Version})
	}
	if patch.NextRenewal != nil {
		updates = append(updates, firestore.Update{Path: "nextRenewal", Value: *patch.NextRenewal})
	}

	if _, err := docRef.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("deployment '%s' not found for update: %w", ref.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update deployment '%s': %w", ref.ID, err)
	}
	return nil
}

// Delete removes the referenced document. Deleting an already-deleted
// document is treated as success so that admin flows stay idempotent.
func (r *firestoreProductRepository) Delete(ctx context.Context, ref models.ProductRef) error {
	docRef, err := r.docRef(ref)
	if err != nil {
		return err
	}
	if _, err := docRef.Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("failed to delete deployment '%s': %w", ref.ID, err)
	}
	return nil
}
