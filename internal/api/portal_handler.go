package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bonusthoughts-backend/internal/core"
)

// PortalHandler handles the client portal endpoints.
type PortalHandler struct {
	provisioningService core.ProvisioningService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(ps core.ProvisioningService) *PortalHandler {
	return &PortalHandler{provisioningService: ps}
}

// SyncSession reconciles pending deployments for the authenticated session
// and returns the resulting product list. Every portal load goes through
// this, so pre-provisioned deployments are claimed before the list is
// ever shown. A failure here returns an error status, never an empty
// list, so the frontend can distinguish "no products" from "sync broke".
func (h *PortalHandler) SyncSession(c *gin.Context) {
	userID := c.GetString("userID")
	userEmail := c.GetString("userEmail")
	if userID == "" || userEmail == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: session identity not found in context"})
		return
	}

	products, err := h.provisioningService.SyncSession(c.Request.Context(), userID, userEmail)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid session identity", Details: err.Error()})
			return
		}
		log.Printf("SyncSession Error: reconciliation failed for user %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to sync deployments", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
