package server

import (
	"net/http"
	"strings"
	"time"

	"auction-house/internal/identity"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthMiddleware resolves the caller's bearer token to an identity and
// stores it in the request context. Unknown or missing tokens abort 401.
func AuthMiddleware(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			utils.JSONError(c, http.StatusUnauthorized, nil, "missing credentials")
			c.Abort()
			return
		}

		id, err := resolver.Resolve(token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "invalid credentials")
			c.Abort()
			return
		}

		c.Set(identity.ContextKey, id)
		c.Next()
	}
}

// RequireAdmin gates a route group on the admin capability. Must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok || !id.IsAdmin() {
			utils.JSONError(c, http.StatusForbidden, nil, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the resolved identity stored by AuthMiddleware.
func IdentityFrom(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(identity.ContextKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}
