package di

import (
	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/service"
	"human-ai-chat/backend/internal/store"
	"human-ai-chat/backend/internal/ws"
	"human-ai-chat/backend/pkg/config"
	"human-ai-chat/backend/pkg/jwt"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/metrics"
)

// Container holds all the dependencies for the application. Collections are
// opened once at startup; everything downstream shares them.
type Container struct {
	Config  *config.Config
	Logger  *logger.Logger
	Metrics *metrics.Metrics

	JWTService *jwt.Service

	Users      *store.Collection[models.User]
	Characters *store.Collection[models.Character]
	Chats      *store.Collection[models.ChatMessage]
	Voices     *store.Collection[models.VoiceRecording]

	UserService      *service.UserService
	CharacterService *service.CharacterService
	ChatService      *service.ChatService
	VoiceService     *service.VoiceService

	Hub *ws.Hub
}

// New wires the store, services and fan-out hub together. The hub is
// created before the services because they broadcast through it, and the
// chat service is attached to the hub afterwards so inbound channel events
// can reach it.
func New(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *Container {
	dataDir := cfg.Paths.DataDir

	users := store.Open(dataDir, "users", func(u models.User) int64 { return u.ID }, log, m)
	characters := store.Open(dataDir, "characters", func(c models.Character) int64 { return c.ID }, log, m)
	chats := store.Open(dataDir, "chats", func(c models.ChatMessage) int64 { return c.ID }, log, m)
	voices := store.Open(dataDir, "voices", func(v models.VoiceRecording) int64 { return v.ID }, log, m)

	hub := ws.NewHub(log, m)

	userService := service.NewUserService(users)
	characterService := service.NewCharacterService(characters)
	chatService := service.NewChatService(chats, hub, m)
	voiceService := service.NewVoiceService(voices, hub)

	hub.SetChatService(chatService)

	return &Container{
		Config:           cfg,
		Logger:           log,
		Metrics:          m,
		JWTService:       jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry),
		Users:            users,
		Characters:       characters,
		Chats:            chats,
		Voices:           voices,
		UserService:      userService,
		CharacterService: characterService,
		ChatService:      chatService,
		VoiceService:     voiceService,
		Hub:              hub,
	}
}
