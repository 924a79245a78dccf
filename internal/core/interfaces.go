package core

import (
	"context"

	"bonusthoughts-backend/internal/models"
)

// UserService defines the interface for profile lookups.
type UserService interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// ProvisioningService reconciles pre-provisioned deployments into a
// user's account on session start and returns the resulting product list.
type ProvisioningService interface {
	SyncSession(ctx context.Context, userID, email string) ([]*models.Product, error)
}

// AdminService defines the interface for the deployment console.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	Deploy(ctx context.Context, adminID string, req models.DeployRequest) (*models.Deployment, error)
	Search(ctx context.Context, term string) ([]*models.Deployment, error)
	UpdateDeployment(ctx context.Context, adminID string, ref models.ProductRef, patch models.ProductPatch) error
	DeleteDeployment(ctx context.Context, adminID string, ref models.ProductRef) error
}

// SupportService defines the interface for submitting support requests.
type SupportService interface {
	Submit(ctx context.Context, userID, userEmail string, req models.CreateSupportRequest) (*models.SupportRequest, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, entry models.AuditLog) error
}
