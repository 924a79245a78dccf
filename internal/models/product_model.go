package models

import "time"

// Product statuses shown in the portal. Free-form strings in the store,
// but writes are validated against this set.
const (
	StatusActive      = "Active"
	StatusDeploying   = "Deploying"
	StatusMaintenance = "Maintenance"
)

// ValidStatus reports whether s is one of the recognised product statuses.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusDeploying || s == StatusMaintenance
}

// Product is a deployment owned by a specific user. It lives in the
// users/{uid}/products subcollection; the owner is fixed at creation and
// never reassigned.
type Product struct {
	ID          string    `json:"id" firestore:"-"`                // Document ID, auto-generated
	OwnerID     string    `json:"ownerId,omitempty" firestore:"-"` // Inferred from the subcollection path
	Name        string    `json:"name" firestore:"name"`
	Status      string    `json:"status" firestore:"status"` // Active | Deploying | Maintenance
	Version     string    `json:"version" firestore:"version"`
	NextRenewal string    `json:"nextRenewal" firestore:"nextRenewal"` // Date string, e.g. "2025-12-01"
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// PendingProduct is a deployment targeted at an email address whose owner
// has not authenticated yet. It lives in the flat pending_products
// collection and is consumed destructively by session reconciliation.
type PendingProduct struct {
	ID          string    `json:"id" firestore:"-"`
	TargetEmail string    `json:"targetEmail" firestore:"targetEmail"` // lower-cased, trimmed
	Name        string    `json:"name" firestore:"name"`
	Status      string    `json:"status" firestore:"status"`
	Version     string    `json:"version" firestore:"version"`
	NextRenewal string    `json:"nextRenewal" firestore:"nextRenewal"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// DeploymentScope tags which collection a deployment document lives in.
type DeploymentScope string

const (
	ScopePending DeploymentScope = "Pending"
	ScopeActive  DeploymentScope = "Active"
)

// ProductRef identifies a deployment document unambiguously. It is
// constructed at the point of origin (search results, route params) and
// never re-derived from a path string. OwnerID is empty for pending refs.
type ProductRef struct {
	Scope   DeploymentScope `json:"scope"`
	OwnerID string          `json:"ownerId,omitempty"`
	ID      string          `json:"id"`
}

// PendingRef builds a reference to a pending_products document.
func PendingRef(id string) ProductRef {
	return ProductRef{Scope: ScopePending, ID: id}
}

// ActiveRef builds a reference to a users/{ownerID}/products document.
func ActiveRef(ownerID, id string) ProductRef {
	return ProductRef{Scope: ScopeActive, OwnerID: ownerID, ID: id}
}

// ProductPatch carries the mutable attributes of a deployment. Pointers
// distinguish "leave unchanged" from "set to empty". Identifier, owner
// and createdAt are immutable and deliberately absent.
type ProductPatch struct {
	Name        *string `json:"name,omitempty"`
	Status      *string `json:"status,omitempty"`
	Version     *string `json:"version,omitempty"`
	NextRenewal *string `json:"nextRenewal,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Status == nil && p.Version == nil && p.NextRenewal == nil
}

// Deployment is an admin search result: a product from either collection,
// tagged with its origin and carrying the ref needed for edit/delete.
type Deployment struct {
	Ref         ProductRef `json:"ref"`
	TargetEmail string     `json:"targetEmail,omitempty"` // pending only
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Version     string     `json:"version"`
	NextRenewal string     `json:"nextRenewal"`
	CreatedAt   time.Time  `json:"createdAt"`
}
