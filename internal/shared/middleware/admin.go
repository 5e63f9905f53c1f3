package middleware

import (
	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared/response"
)

// AdminMiddleware checks if user has one of the staff roles.
// Must run after AuthMiddleware.
func AdminMiddleware(roles ...string) gin.HandlerFunc {
	if len(roles) == 0 {
		roles = []string{"admin"}
	}

	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Access denied: admin role required")
		c.Abort()
	}
}
