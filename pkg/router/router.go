package router

import (
	"path/filepath"
	"time"

	"human-ai-chat/backend/internal/api"
	"human-ai-chat/backend/internal/ws"
	"human-ai-chat/backend/pkg/di"
	"human-ai-chat/backend/pkg/errors"
	"human-ai-chat/backend/pkg/jwt"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router assembles the gin engine, middleware chain and routes.
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router around the given container and starts the
// fan-out hub.
func New(container *di.Container) *Router {
	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(corsMiddleware(container.Config.Security.AllowedOrigins))

	limiterOpts := middleware.DefaultRateLimiterOptions()
	limiterOpts.Limit = rate.Limit(container.Config.Security.RateLimit)
	limiterOpts.Burst = container.Config.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(rateLimiter.Middleware())

	go container.Hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes.
func (r *Router) SetupRoutes() {
	c := r.Container
	sessionAuth := middleware.SessionAuth(c.JWTService, c.UserService, r.Logger)

	authHandler := api.NewAuthHandler(c.UserService, c.JWTService, c.Config.JWT.Expiry, r.Logger)
	characterHandler := api.NewCharacterHandler(c.CharacterService)
	chatHandler := api.NewChatHandler(c.ChatService)
	uploadHandler := api.NewUploadHandler(c.VoiceService, c.CharacterService,
		c.Config.Paths.AudioDir, c.Config.Paths.ImagesDir, r.Logger)

	// Public surface.
	r.Engine.POST("/signup", authHandler.Signup)
	r.Engine.POST("/login", authHandler.Login)
	r.Engine.GET("/healthz", r.healthCheckHandler())
	r.Engine.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
	r.Engine.Static("/uploads", filepath.Join(c.Config.Paths.PublicDir, "uploads"))

	// Session-gated surface.
	authed := r.Engine.Group("/")
	authed.Use(sessionAuth)
	{
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/me", authHandler.Me)

		authed.POST("/characters", characterHandler.CreateCharacter)
		authed.GET("/characters", characterHandler.ListCharacters)

		authed.GET("/chats", chatHandler.ListMessages)
		authed.POST("/chats", chatHandler.PostMessage)
		authed.POST("/chats/:id/reply", middleware.RequireRole(jwt.RoleUltimate), chatHandler.Reply)

		authed.POST("/upload/voice", uploadHandler.UploadVoice)
		authed.POST("/upload/character-image", uploadHandler.UploadCharacterImage)

		// The channel enforces the same session requirement as the HTTP
		// surface; privilege for submit-reply is checked per event.
		authed.GET("/ws", func(ctx *gin.Context) {
			ws.ServeWS(c.Hub, ctx)
		})
	}
}

func (r *Router) healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    r.Container.Config.Server.Env,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, Origin, Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
