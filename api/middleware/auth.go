package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/internal/auth"
	"github.com/alxdev/echocheck-backend/internal/models"
	"github.com/alxdev/echocheck-backend/internal/store"
	"github.com/alxdev/echocheck-backend/pkg/logger"
)

const userContextKey = "currentUser"

// AuthRequired validates the bearer access token and loads the user into the
// request context. Requests without a valid token are aborted with 401.
func AuthRequired(tokens *auth.TokenManager, users store.Users, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		userID, err := tokens.UserID(token, auth.TokenTypeAccess)
		if err != nil {
			unauthorized(c, "Invalid or expired access token")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			unauthorized(c, "User not found")
			return
		}
		if err != nil {
			log.Error("failed to load user for auth",
				logger.String("path", c.Request.URL.Path),
				logger.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "database_error",
				"message": "Failed to authenticate",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
