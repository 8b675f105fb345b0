package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/logging"
	"matchwell/backend/pkg/jwt"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// AuthMiddleware requires a valid bearer token and sets UserIDKey.
// Browsers cannot set headers on an EventSource, so an access_token query parameter is
// accepted as well.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString = c.Query("access_token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		userID, err := jwt.ParseToken(tokenString, secret)
		if err != nil {
			logging.Debug(c.Request.Context()).Err(err).Msg("rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// UserID returns the authenticated user id, or 0 when the request is anonymous.
func UserID(c *gin.Context) uint {
	id, _ := c.Get(UserIDKey)
	userID, _ := id.(uint)
	return userID
}
