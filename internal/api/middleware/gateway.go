package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	contextUserID = "user_id"
	contextEmail  = "user_email"
	contextRole   = "user_role"
)

// GatewayAuth trusts caller info from gateway headers (X-User-ID, X-User-Email, X-User-Role)
// This is used when the service runs behind the Express gateway (magda-cloud)
// which handles JWT validation and billing checks.
//
// When AUTH_MODE=gateway, the API trusts these headers unconditionally.
// This should ONLY be used in the hosted environment with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set(contextUserID, userID)
		c.Set(contextEmail, c.GetHeader("X-User-Email"))
		c.Set(contextRole, c.GetHeader("X-User-Role"))

		// Also set API key info if present
		if apiKeyID := c.GetHeader("X-API-Key-ID"); apiKeyID != "" {
			c.Set("api_key_id", apiKeyID)
			c.Set("api_key_scopes", c.GetHeader("X-API-Key-Scopes"))
		}

		c.Next()
	}
}

// CallerID retrieves the caller set by GatewayAuth or NoAuth
// Returns the ID and a boolean indicating if it was found
func CallerID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
