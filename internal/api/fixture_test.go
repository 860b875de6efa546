package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/service"
	"human-ai-chat/backend/internal/store"
	"human-ai-chat/backend/pkg/errors"
	"human-ai-chat/backend/pkg/jwt"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// stubNotifier counts events without a live channel hub.
type stubNotifier struct {
	count atomic.Int64
}

func (n *stubNotifier) Notify(event string) { n.count.Add(1) }

type apiFixture struct {
	engine     *gin.Engine
	users      *service.UserService
	characters *service.CharacterService
	chats      *service.ChatService
	voices     *service.VoiceService
	notifier   *stubNotifier
	audioDir   string
	imagesDir  string
}

// newAPIFixture assembles the HTTP surface over temp-dir collections, with
// the same middleware chain and routes the real router registers.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.Config{Level: "error", JSON: false})
	dataDir := t.TempDir()
	audioDir := t.TempDir()
	imagesDir := t.TempDir()

	users := store.Open(dataDir, "users", func(u models.User) int64 { return u.ID }, log, nil)
	characters := store.Open(dataDir, "characters", func(c models.Character) int64 { return c.ID }, log, nil)
	chats := store.Open(dataDir, "chats", func(c models.ChatMessage) int64 { return c.ID }, log, nil)
	voices := store.Open(dataDir, "voices", func(v models.VoiceRecording) int64 { return v.ID }, log, nil)

	notifier := &stubNotifier{}
	userService := service.NewUserService(users)
	characterService := service.NewCharacterService(characters)
	chatService := service.NewChatService(chats, notifier, nil)
	voiceService := service.NewVoiceService(voices, notifier)

	jwtService := jwt.NewService("test-secret", time.Hour)
	sessionAuth := middleware.SessionAuth(jwtService, userService, log)

	authHandler := NewAuthHandler(userService, jwtService, time.Hour, log)
	characterHandler := NewCharacterHandler(characterService)
	chatHandler := NewChatHandler(chatService)
	uploadHandler := NewUploadHandler(voiceService, characterService, audioDir, imagesDir, log)

	engine := gin.New()
	engine.Use(errors.ErrorHandler())

	engine.POST("/signup", authHandler.Signup)
	engine.POST("/login", authHandler.Login)

	authed := engine.Group("/")
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
	}

	return &apiFixture{
		engine:     engine,
		users:      userService,
		characters: characterService,
		chats:      chatService,
		voices:     voiceService,
		notifier:   notifier,
		audioDir:   audioDir,
		imagesDir:  imagesDir,
	}
}

// doJSON performs a request with an optional JSON body and bearer token.
func (f *apiFixture) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// doMultipart performs a multipart upload with one file field plus extra
// form values.
func (f *apiFixture) doMultipart(t *testing.T, path, token, fileField, filename string, fileContent []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = part.Write(fileContent)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// newCookieRequest builds a request authenticated by session cookie rather
// than bearer token.
func newCookieRequest(method, path, token string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	return req, httptest.NewRecorder()
}

// signup registers a user and returns the session token.
func (f *apiFixture) signup(t *testing.T, username, password string) string {
	t.Helper()

	w := f.doJSON(t, http.MethodPost, "/signup", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
