package middleware

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
)

// RequirePermission rejects callers lacking permission.
// Must run after Auth.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		switch {
		case user == nil:
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
		case !user.HasPermission(permission):
			_ = c.Error(apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permission", permission))
		default:
			c.Next()
			return
		}
		c.Abort()
	}
}
