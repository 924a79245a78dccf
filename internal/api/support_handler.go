package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bonusthoughts-backend/internal/core"
	"bonusthoughts-backend/internal/models"
)

// SupportHandler handles support request submission from the portal.
type SupportHandler struct {
	supportService core.SupportService
}

// NewSupportHandler creates a new SupportHandler.
func NewSupportHandler(ss core.SupportService) *SupportHandler {
	return &SupportHandler{supportService: ss}
}

// SubmitRequest handles POST /api/v1/portal/requests.
func (h *SupportHandler) SubmitRequest(c *gin.Context) {
	userID := c.GetString("userID")
	userEmail := c.GetString("userEmail")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: session identity not found in context"})
		return
	}

	var req models.CreateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	request, err := h.supportService.Submit(c.Request.Context(), userID, userEmail, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid support request", Details: err.Error()})
		case errors.Is(err, core.ErrDeploymentNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Deployment not found", Details: err.Error()})
		default:
			log.Printf("SubmitRequest Error: failed for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit support request", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}
