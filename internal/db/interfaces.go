package db

import (
	"context"

	"bonusthoughts-backend/internal/models"
)

// UserRepository defines the interface for profile document storage.
type UserRepository interface {
	// UpsertProfile merge-writes the profile for userID with the given
	// (already normalized) email and a server-assigned lastSeen. It must
	// not touch isAdmin on existing documents.
	UpsertProfile(ctx context.Context, userID, email string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetByEmail resolves a lower-cased email to a profile. Returns a
	// wrapped ErrNotFound when no profile matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ListAll returns the roster of known profiles for the admin console.
	ListAll(ctx context.Context) ([]*models.User, error)
}

// ProductRepository is the sole read/write path to both deployment
// collections (users/{uid}/products and pending_products).
type ProductRepository interface {
	CreateActive(ctx context.Context, ownerID string, product *models.Product) (string, error)
	// CreatePending normalizes TargetEmail (lowercase, trim) before
	// storage and rejects addresses without an "@" with ErrInvalidEmail.
	CreatePending(ctx context.Context, pending *models.PendingProduct) (string, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]*models.Product, error)
	// ListActiveByOwnerEmail resolves email -> uid via the profile
	// collection first; wraps ErrNotFound when no profile matches.
	ListActiveByOwnerEmail(ctx context.Context, email string) ([]*models.Product, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*models.PendingProduct, error)
	// MigratePending moves the given pending deployments into the owner's
	// active subcollection in a single atomic batch: one create plus one
	// delete per deployment, all-or-nothing.
	MigratePending(ctx context.Context, ownerID string, pending []*models.PendingProduct) error
	// Update applies the patch to the referenced document. Only
	// name/status/version/nextRenewal are mutable.
	Update(ctx context.Context, ref models.ProductRef, patch models.ProductPatch) error
	// Delete removes the referenced document. A store-level NotFound is
	// treated as success.
	Delete(ctx context.Context, ref models.ProductRef) error
}

// RequestRepository defines the interface for support request storage.
type RequestRepository interface {
	Create(ctx context.Context, req *models.SupportRequest) (string, error)
}

// AuditRepository defines the interface for audit log storage.
type AuditRepository interface {
	Create(ctx context.Context, entry models.AuditLog) error
}
