package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserIDKey is where Auth stores the authenticated user id.
const UserIDKey = "userID"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// Auth требует заголовок Authorization: Bearer <token>
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing bearer token",
				"code":    "invalid_token",
			})
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil && entity.KindOf(err) == entity.KindStorage {
			logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Authentication failed on storage")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "internal server error",
				"code":    entity.ErrDatabaseError.Code,
			})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid token",
				"code":    "invalid_token",
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
