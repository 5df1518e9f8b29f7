package middleware

import (
	"net/http"
	"strings"

	"luna/internal/service"

	"github.com/gin-gonic/gin"
)

// UserIDKey is where JWT puts the authenticated domain.UserID.
const UserIDKey = "user_id"

// JWT requires a valid "Authorization: Bearer <token>" header.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
