package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bonusthoughts-backend/internal/core"
	"bonusthoughts-backend/internal/db"
	"bonusthoughts-backend/internal/middleware"
)

// SetupRoutes configures all application routes. Global middleware
// (logging, recovery, CORS) is applied to the router in main.go before
// this is called.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	userService core.UserService,
	provisioningService core.ProvisioningService,
	adminService core.AdminService,
	supportService core.SupportService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized; routes cannot be secured.")
		panic("Firebase Auth client is nil during route setup")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	userHandler := NewUserHandler(userService)
	portalHandler := NewPortalHandler(provisioningService)
	supportHandler := NewSupportHandler(supportService)
	adminHandler := NewAdminHandler(adminService)

	apiV1 := router.Group("/api/v1")
	{
		userGroup := apiV1.Group("/users")
		{
			// GET /api/v1/users/me - current user's mirrored profile (includes isAdmin).
			userGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
		}

		// Portal endpoints. Loading the product list always runs the
		// pending-deployment sync first; there is deliberately no way to
		// read the list without it.
		portalGroup := apiV1.Group("/portal", authMW.VerifyToken())
		{
			portalGroup.GET("/products", portalHandler.SyncSession)
			portalGroup.POST("/sync", portalHandler.SyncSession)
			portalGroup.POST("/requests", supportHandler.SubmitRequest)
		}

		// Admin console endpoints, gated on the profile's isAdmin flag.
		adminGroup := apiV1.Group("/admin", authMW.VerifyToken(), middleware.RequireAdmin(userService))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/deployments", adminHandler.Deploy)
			adminGroup.GET("/deployments", adminHandler.Search)
			adminGroup.PATCH("/deployments/pending/:id", adminHandler.UpdatePending)
			adminGroup.PATCH("/deployments/active/:ownerId/:id", adminHandler.UpdateActive)
			adminGroup.DELETE("/deployments/pending/:id", adminHandler.DeletePending)
			adminGroup.DELETE("/deployments/active/:ownerId/:id", adminHandler.DeleteActive)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "BonusThoughts backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
