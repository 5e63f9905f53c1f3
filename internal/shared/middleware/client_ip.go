package middleware

import (
	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared/utils"
)

const ClientIPKey = "client_ip"

// ClientIPMiddleware extracts the client IP address from the request
// and injects it into both the gin context and the request context,
// so gateway adapters (vnp_IpAddr) can read it without depending on gin.
//
// Usage:
//
//	router.Use(middleware.ClientIPMiddleware())
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set(ClientIPKey, clientIP)
		c.Request = c.Request.WithContext(utils.WithClientIP(c.Request.Context(), clientIP))

		c.Next()
	}
}
