package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusbridge/connect/internal/auth"
	"github.com/campusbridge/connect/pkg/response"
)

const (
	// ContextService is the key for the calling service name in gin context.
	ContextService = "service"
)

// JWT returns a middleware that validates the bearer token and sets the
// calling service in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextService, claims.Service)
		c.Next()
	}
}
