package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
	"github.com/noah-isme/hostel-allocation-api/pkg/response"
)

// RequireRoles only lets callers whose token carries one of the roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
}
