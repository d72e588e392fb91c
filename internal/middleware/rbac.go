package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/response"
)

// RequireRoles lets the request through only when the caller holds one of the roles.
// Assignment checks for professionals happen in the services.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no tienes permiso para realizar esta acción"))
			c.Abort()
			return
		}
		c.Next()
	}
}
