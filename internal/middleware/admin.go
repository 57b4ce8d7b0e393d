package middleware

import (
	"net/http"

	"agrimarket-api-io/api/internal/auth"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var ErrInsufficientRole = errors.New("insufficient permissions")

// AdminOnly middleware restricts access to admin users only
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// RequireRoles lets the request through when the caller holds one of roles.
// It must run after auth.Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		session, err := auth.CurrentUser(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		if _, ok := allowed[session.Role]; !ok {
			util.HandleError(c, http.StatusForbidden, errors.Wrapf(ErrInsufficientRole, "role %s", session.Role))
			return
		}

		c.Next()
	}
}
