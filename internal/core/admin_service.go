package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bonusthoughts-backend/internal/cache"
	"bonusthoughts-backend/internal/db"
	"bonusthoughts-backend/internal/models"
)

// Custom errors for the AdminService
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAmbiguousTarget    = errors.New("exactly one of targetUserId or targetEmail must be set")
	ErrDeploymentNotFound = errors.New("deployment not found")
)

const (
	rosterCacheKey = "admin:user_roster"
	rosterCacheTTL = time.Minute
)

// adminService implements the AdminService interface.
type adminService struct {
	productRepo  db.ProductRepository
	userRepo     db.UserRepository
	auditService AuditService
	rosterCache  cache.Cache // may be nil when no cache backend is configured
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(
	pr db.ProductRepository,
	ur db.UserRepository,
	as AuditService,
	rosterCache cache.Cache,
) AdminService {
	return &adminService{
		productRepo:  pr,
		userRepo:     ur,
		auditService: as,
		rosterCache:  rosterCache,
	}
}

// audit records an admin action. Best-effort: a failed audit write must
// not fail the admin action it describes.
func (s *adminService) audit(ctx context.Context, adminID, action, targetType, targetID string, details map[string]interface{}) {
	if s.auditService == nil {
		return
	}
	_ = s.auditService.CreateAuditLog(ctx, models.AuditLog{
		UserID:     adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
}

// ListUsers returns the roster used by the deploy/search UIs. The console
// reloads it per keystroke, so results are cached briefly when a cache
// backend is available.
func (s *adminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if s.userRepo == nil {
		return nil, errors.New("adminService: component not initialized")
	}

	if s.rosterCache != nil {
		if raw, err := s.rosterCache.Get(ctx, rosterCacheKey); err == nil && raw != "" {
			var users []*models.User
			if err := json.Unmarshal([]byte(raw), &users); err == nil {
				return users, nil
			}
			// Corrupt cache entry; fall through to the store.
		}
	}

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if s.rosterCache != nil {
		if raw, err := json.Marshal(users); err == nil {
			_ = s.rosterCache.Set(ctx, rosterCacheKey, string(raw), rosterCacheTTL)
		}
	}
	return users, nil
}

// validateAttributes checks the product attributes shared by both deploy paths.
func validateAttributes(name, status, version, nextRenewal string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: status '%s' is not one of Active, Deploying, Maintenance", ErrInvalidInput, status)
	}
	if strings.TrimSpace(version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidInput)
	}
	if strings.TrimSpace(nextRenewal) == "" {
		return fmt.Errorf("%w: nextRenewal is required", ErrInvalidInput)
	}
	return nil
}

// Deploy creates a deployment for an existing account (targetUserId,
// resolved through roster selection) or pre-provisions one against an
// email address (targetEmail). The existing-user path verifies the uid
// against the profile collection so a typo cannot create an orphaned
// deployment under a nonexistent owner; the email path deliberately does
// not check for an account, since it targets future users.
func (s *adminService) Deploy(ctx context.Context, adminID string, req models.DeployRequest) (*models.Deployment, error) {
	if s.productRepo == nil || s.userRepo == nil {
		return nil, errors.New("adminService: component not initialized")
	}
	if err := validateAttributes(req.Name, req.Status, req.Version, req.NextRenewal); err != nil {
		return nil, err
	}

	hasUserID := strings.TrimSpace(req.TargetUserID) != ""
	hasEmail := strings.TrimSpace(req.TargetEmail) != ""
	if hasUserID == hasEmail {
		return nil, fmt.Errorf("%w", ErrAmbiguousTarget)
	}

	if hasUserID {
		uid := strings.TrimSpace(req.TargetUserID)
		if _, err := s.userRepo.GetByID(ctx, uid); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: no account with uid '%s'", ErrUserNotFound, uid)
			}
			return nil, fmt.Errorf("failed to verify deployment target '%s': %w", uid, err)
		}

		product := &models.Product{
			Name:        req.Name,
			Status:      req.Status,
			Version:     req.Version,
			NextRenewal: req.NextRenewal,
		}
		id, err := s.productRepo.CreateActive(ctx, uid, product)
		if err != nil {
			return nil, fmt.Errorf("failed to deploy '%s' to user '%s': %w", req.Name, uid, err)
		}

		s.audit(ctx, adminID, "DEPLOYMENT_CREATE", "PRODUCT", id, map[string]interface{}{
			"ownerId": uid, "name": req.Name,
		})
		return &models.Deployment{
			Ref:         models.ActiveRef(uid, id),
			Name:        req.Name,
			Status:      req.Status,
			Version:     req.Version,
			NextRenewal: req.NextRenewal,
		}, nil
	}

	pending := &models.PendingProduct{
		TargetEmail: req.TargetEmail,
		Name:        req.Name,
		Status:      req.Status,
		Version:     req.Version,
		NextRenewal: req.NextRenewal,
	}
	id, err := s.productRepo.CreatePending(ctx, pending)
	if err != nil {
		if errors.Is(err, db.ErrInvalidEmail) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to pre-provision '%s' for '%s': %w", req.Name, req.TargetEmail, err)
	}

	s.audit(ctx, adminID, "DEPLOYMENT_PREPROVISION", "PENDING_PRODUCT", id, map[string]interface{}{
		"targetEmail": pending.TargetEmail, "name": req.Name,
	})
	return &models.Deployment{
		Ref:         models.PendingRef(id),
		TargetEmail: pending.TargetEmail,
		Name:        req.Name,
		Status:      req.Status,
		Version:     req.Version,
		NextRenewal: req.NextRenewal,
	}, nil
}

// Search dispatches on the shape of the term. A term containing "@" is an
// email: pending deployments are queried directly and active ones through
// email -> uid resolution, where a missing profile means zero active
// deployments rather than a failure (the admin may be checking a
// pre-provisioned address with no account yet). Any other term is a
// literal uid: active deployments only, the pending collection is never
// consulted.
func (s *adminService) Search(ctx context.Context, term string) ([]*models.Deployment, error) {
	if s.productRepo == nil {
		return nil, errors.New("adminService: component not initialized")
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is empty", ErrInvalidInput)
	}

	results := []*models.Deployment{}

	if strings.Contains(term, "@") {
		email := strings.ToLower(term)

		pending, err := s.productRepo.ListPendingByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("pending search failed for '%s': %w", email, err)
		}
		for _, p := range pending {
			results = append(results, &models.Deployment{
				Ref:         models.PendingRef(p.ID),
				TargetEmail: p.TargetEmail,
				Name:        p.Name,
				Status:      p.Status,
				Version:     p.Version,
				NextRenewal: p.NextRenewal,
				CreatedAt:   p.CreatedAt,
			})
		}

		active, err := s.productRepo.ListActiveByOwnerEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("active search failed for '%s': %w", email, err)
			}
			// No account for this email yet; pending results stand alone.
		}
		for _, p := range active {
			results = append(results, activeDeployment(p))
		}
		return results, nil
	}

	active, err := s.productRepo.ListActiveByOwner(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("active search failed for uid '%s': %w", term, err)
	}
	for _, p := range active {
		results = append(results, activeDeployment(p))
	}
	return results, nil
}

func activeDeployment(p *models.Product) *models.Deployment {
	return &models.Deployment{
		Ref:         models.ActiveRef(p.OwnerID, p.ID),
		Name:        p.Name,
		Status:      p.Status,
		Version:     p.Version,
		NextRenewal: p.NextRenewal,
		CreatedAt:   p.CreatedAt,
	}
}

// UpdateDeployment applies a partial edit to the referenced deployment.
func (s *adminService) UpdateDeployment(ctx context.Context, adminID string, ref models.ProductRef, patch models.ProductPatch) error {
	if s.productRepo == nil {
		return errors.New("adminService: component not initialized")
	}
	if patch.Empty() {
		return fmt.Errorf("%w: update contains no fields", ErrInvalidInput)
	}
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return fmt.Errorf("%w: status '%s' is not one of Active, Deploying, Maintenance", ErrInvalidInput, *patch.Status)
	}

	if err := s.productRepo.Update(ctx, ref, patch); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrDeploymentNotFound, ref.ID)
		}
		return fmt.Errorf("failed to update deployment '%s': %w", ref.ID, err)
	}

	s.audit(ctx, adminID, "DEPLOYMENT_UPDATE", string(ref.Scope), ref.ID, nil)
	return nil
}

// DeleteDeployment removes the referenced deployment. Idempotent: deleting
// an already-deleted deployment succeeds.
func (s *adminService) DeleteDeployment(ctx context.Context, adminID string, ref models.ProductRef) error {
	if s.productRepo == nil {
		return errors.New("adminService: component not initialized")
	}
	if err := s.productRepo.Delete(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete deployment '%s': %w", ref.ID, err)
	}

	s.audit(ctx, adminID, "DEPLOYMENT_DELETE", string(ref.Scope), ref.ID, nil)
	return nil
}
