package api

import (
	"net/http"
	"time"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/service"
	apperrors "human-ai-chat/backend/pkg/errors"
	"human-ai-chat/backend/pkg/jwt"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login, logout and identity resolution.
type AuthHandler struct {
	users      *service.UserService
	jwtService *jwt.Service
	sessionTTL time.Duration
	logger     *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *service.UserService, jwtService *jwt.Service, sessionTTL time.Duration, logger *logger.Logger) *AuthHandler {
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Signup handles user registration. The first account ever created gets the
// ultimate role. A session is established for the new account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_BODY", "Could not parse credentials"))
		return
	}

	user, err := h.users.Register(req.Username, req.Password)
	if err != nil {
		switch err {
		case service.ErrMissingFields:
			c.Error(apperrors.NewBadRequestError("MISSING_FIELDS", "Username and password are required"))
		case service.ErrUsernameTaken:
			c.Error(apperrors.NewConflictError("USERNAME_TAKEN", "A user with this username already exists"))
		default:
			h.logger.LogError(err, "signup failed", "username", req.Username)
			c.Error(apperrors.NewInternalServerError("SIGNUP_FAILED", "Failed to create user account"))
		}
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SESSION_FAILED", "Failed to establish session"))
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)

	c.JSON(http.StatusCreated, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Login authenticates stored credentials and establishes a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_BODY", "Could not parse credentials"))
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		c.Error(apperrors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid username or password"))
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SESSION_FAILED", "Failed to establish session"))
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)

	c.JSON(http.StatusOK, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

func (h *AuthHandler) issueSession(c *gin.Context, user models.User) (string, error) {
	token, err := h.jwtService.Generate(user.ID, user.Username, jwt.Role(user.Role))
	if err != nil {
		h.logger.LogError(err, "token generation failed", "user_id", user.ID)
		return "", err
	}

	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	return token, nil
}
