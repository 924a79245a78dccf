package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bonusthoughts-backend/internal/core"
	"bonusthoughts-backend/internal/models"
)

// AdminHandler handles the deployment console endpoints. All routes are
// gated by the auth and admin middleware.
type AdminHandler struct {
	adminService core.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService) *AdminHandler {
	return &AdminHandler{adminService: as}
}

// ListUsers handles GET /api/v1/admin/users, the roster backing the
// deploy-target and search suggestion dropdowns.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("ListUsers Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list users", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Deploy handles POST /api/v1/admin/deployments. The request targets
// either an existing account by uid or a future user by email.
func (h *AdminHandler) Deploy(c *gin.Context) {
	var req models.DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	deployment, err := h.adminService.Deploy(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrAmbiguousTarget):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid deployment request", Details: err.Error()})
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Deployment target not found", Details: err.Error()})
		default:
			log.Printf("Deploy Error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create deployment", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, deployment)
}

// Search handles GET /api/v1/admin/deployments?q=. Terms containing "@"
// search both collections by email; anything else is treated as a uid.
func (h *AdminHandler) Search(c *gin.Context) {
	results, err := h.adminService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid search term", Details: err.Error()})
			return
		}
		log.Printf("Search Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to search deployments", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deployments": results})
}

// refFromRoute builds the tagged reference for update/delete routes. The
// scope is fixed by which route matched, never parsed out of a path string.
func refFromRoute(c *gin.Context, scope models.DeploymentScope) models.ProductRef {
	if scope == models.ScopePending {
		return models.PendingRef(c.Param("id"))
	}
	return models.ActiveRef(c.Param("ownerId"), c.Param("id"))
}

func (h *AdminHandler) update(c *gin.Context, scope models.DeploymentScope) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	ref := refFromRoute(c, scope)
	if err := h.adminService.UpdateDeployment(c.Request.Context(), c.GetString("userID"), ref, patch); err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid update", Details: err.Error()})
		case errors.Is(err, core.ErrDeploymentNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Deployment not found", Details: err.Error()})
		default:
			log.Printf("UpdateDeployment Error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update deployment", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Deployment updated"})
}

func (h *AdminHandler) delete(c *gin.Context, scope models.DeploymentScope) {
	ref := refFromRoute(c, scope)
	if err := h.adminService.DeleteDeployment(c.Request.Context(), c.GetString("userID"), ref); err != nil {
		log.Printf("DeleteDeployment Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete deployment", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Deployment deleted"})
}

// UpdatePending handles PATCH /api/v1/admin/deployments/pending/:id.
func (h *AdminHandler) UpdatePending(c *gin.Context) { h.update(c, models.ScopePending) }

// UpdateActive handles PATCH /api/v1/admin/deployments/active/:ownerId/:id.
func (h *AdminHandler) UpdateActive(c *gin.Context) { h.update(c, models.ScopeActive) }

// DeletePending handles DELETE /api/v1/admin/deployments/pending/:id.
func (h *AdminHandler) DeletePending(c *gin.Context) { h.delete(c, models.ScopePending) }

// DeleteActive handles DELETE /api/v1/admin/deployments/active/:ownerId/:id.
func (h *AdminHandler) DeleteActive(c *gin.Context) { h.delete(c, models.ScopeActive) }
