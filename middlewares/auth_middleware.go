package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/utils"
)

const sessionKey = "session"

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return ""
	}
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return authHeader
}

// SessionMiddleware builds the services.Session for the request from the bearer token. It never
// rejects: without a usable token the session is anonymous and the remote API decides. Tokens
// revoked by logout count as absent.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" && utils.IsTokenRevoked(token) {
			token = ""
		}
		c.Set(sessionKey, services.NewSession(token))
		c.Next()
	}
}

// SessionFrom returns the session SessionMiddleware stored, or an anonymous one.
func SessionFrom(c *gin.Context) services.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(services.Session); ok {
			return s
		}
	}
	return services.Session{}
}

// AuthMiddleware verifies tokens signed with secret. Only the sandbox API, which issues its own
// tokens, uses it.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid user ID in token"))
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
