package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/utils"
)

// WebSocketSessionMiddleware reads the token from the "token" query parameter, since browsers
// cannot set headers on a WebSocket handshake. A live view needs a session to follow, so a
// missing or revoked token is rejected.
func WebSocketSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" || utils.IsTokenRevoked(token) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(sessionKey, services.NewSession(token))
		c.Next()
	}
}
