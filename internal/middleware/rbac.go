package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
	"github.com/noah-isme/nep-timetable-api/pkg/response"
)

// RequireRoles allows the request through only when the JWT role is one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SchoolScope rejects requests whose school_id differs from the caller's school claim.
// Superadmins and tokens without a school claim are not scoped.
func SchoolScope(schoolID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			c.Next()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || claims.Role == models.RoleSuperAdmin || claims.SchoolID == "" {
			c.Next()
			return
		}
		if requested := schoolID(c); requested != "" && requested != claims.SchoolID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "school is outside the caller's scope"))
			c.Abort()
			return
		}
		c.Next()
	}
}
