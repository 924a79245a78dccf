package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bonusthoughts-backend/internal/db"
	"bonusthoughts-backend/internal/models"
)

// provisioningService implements the ProvisioningService interface. It is
// a pure function of (userID, email) plus repository calls; auth state is
// resolved by the caller.
type provisioningService struct {
	userRepo    db.UserRepository
	productRepo db.ProductRepository
}

// NewProvisioningService creates a new ProvisioningService instance.
func NewProvisioningService(userRepo db.UserRepository, productRepo db.ProductRepository) ProvisioningService {
	return &provisioningService{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

// SyncSession runs once per authenticated session, after Firebase Auth has
// yielded (userID, email). Order is load-bearing:
//
//  1. upsert the profile so the admin console can resolve this email;
//  2. query pending deployments targeting the session email;
//  3. migrate matches into the user's account in one atomic batch;
//  4. read back and return the full active list.
//
// Each step gates the next. A profile upsert failure aborts before the
// pending query; a batch failure leaves both collections untouched (the
// store's batch atomicity, not a client-side protocol). Errors propagate
// so the caller can show a failure state instead of a half-true list.
func (s *provisioningService) SyncSession(ctx context.Context, userID, email string) ([]*models.Product, error) {
	if s.userRepo == nil || s.productRepo == nil {
		return nil, errors.New("provisioningService: component not initialized")
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: session userID is empty", ErrInvalidInput)
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, fmt.Errorf("%w: session email is empty", ErrInvalidInput)
	}

	if err := s.userRepo.UpsertProfile(ctx, userID, normalized); err != nil {
		return nil, fmt.Errorf("profile sync failed for user '%s': %w", userID, err)
	}

	pending, err := s.productRepo.ListPendingByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("pending lookup failed for '%s': %w", normalized, err)
	}

	if len(pending) > 0 {
		if err := s.productRepo.MigratePending(ctx, userID, pending); err != nil {
			return nil, fmt.Errorf("migration failed for user '%s': %w", userID, err)
		}
	}

	products, err := s.productRepo.ListActiveByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments for user '%s': %w", userID, err)
	}
	return products, nil
}
