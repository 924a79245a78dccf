package models

// DeployRequest represents the admin request to create a new deployment.
// Exactly one of TargetUserID (existing account, selected from the roster)
// or TargetEmail (pre-provisioning) must be set.
type DeployRequest struct {
	TargetUserID string `json:"targetUserId,omitempty"`
	TargetEmail  string `json:"targetEmail,omitempty"`
	Name         string `json:"name" binding:"required"`
	Status       string `json:"status" binding:"required"` // Active | Deploying | Maintenance
	Version      string `json:"version" binding:"required"`
	NextRenewal  string `json:"nextRenewal" binding:"required"`
}

// CreateSupportRequest represents the portal request body for submitting
// a support ticket against an active deployment.
type CreateSupportRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
