package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/tastehub/utils"
)

// WebSocketAuthMiddleware reads the token from ?token= since browsers
// cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		if !authenticate(c, issuer, token) {
			c.AbortWithStatus(401)
			return
		}

		c.Next()
	}
}
