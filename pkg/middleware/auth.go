package middleware

import (
	"strings"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/pkg/errors"
	"human-ai-chat/backend/pkg/jwt"
	"human-ai-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// UserResolver resolves a user identifier to the stored account.
type UserResolver interface {
	GetByID(id int64) (models.User, error)
}

// SessionAuth validates the session token and resolves it to a live user.
// The token is read from the Authorization header, the session cookie or,
// for websocket upgrades where browsers cannot set headers, the token query
// parameter. A token referencing a user that no longer resolves is treated
// as unauthenticated.
func SessionAuth(jwtService *jwt.Service, users UserResolver, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Error(errors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
			c.Abort()
			return
		}

		claims, err := jwtService.Validate(token)
		if err != nil {
			log.Warn("invalid session token", "error", err.Error())
			c.Error(errors.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired session"))
			c.Abort()
			return
		}

		user, err := users.GetByID(claims.UserID)
		if err != nil {
			c.Error(errors.NewUnauthorizedError("SESSION_STALE", "Session no longer resolves to a user"))
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("user", user)
		c.Set("userId", user.ID)

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// CurrentUser returns the user resolved by SessionAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
