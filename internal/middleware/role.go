package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers whose token role differs from requiredRole.
// It must run after OAuth2Auth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("userID"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(models.ErrUnauthorized, "user not authenticated"))
			return
		}

		role, ok := c.Get("userRole")
		userRole, isString := role.(string)
		if !ok || !isString {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.ErrForbidden, "user role not found in token"))
			return
		}

		if userRole != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
				"insufficient permissions", map[string]interface{}{
					"required_role": requiredRole,
					"user_role":     userRole,
				}))
			return
		}

		c.Next()
	}
}
