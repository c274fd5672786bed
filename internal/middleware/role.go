package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nkyriakou/themis/pkg/errors"
	"github.com/nkyriakou/themis/pkg/response"
)

// RequireRole restricts a route to the listed roles. It must run after Auth
// so the role claim is present in the request context.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if _, ok := allowed[role]; !ok {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
