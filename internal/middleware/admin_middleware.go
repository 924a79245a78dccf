package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bonusthoughts-backend/internal/core"
)

// RequireAdmin gates a route group on the isAdmin flag of the caller's
// profile document. It must run after VerifyToken, which puts the uid in
// the context. A missing profile is treated the same as a non-admin one.
func RequireAdmin(userService core.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
			return
		}

		user, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, core.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to verify admin access"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}

		c.Next()
	}
}
