package api

import (
	"fmt"
	"net/http"
	"testing"

	"human-ai-chat/backend/internal/models"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAndListMessages(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodPost, "/chats", token, gin.H{"charId": 7, "text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)

	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, models.StatusWaiting, msg.Status)
	assert.Equal(t, models.SenderUser, msg.From)
	assert.Nil(t, msg.Audio)

	w = f.doJSON(t, http.MethodGet, "/chats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var all []models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, msg.ID, all[0].ID)
}

func TestPostMessageRequiresText(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodPost, "/chats", token, gin.H{"charId": 7, "text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TEXT")
}

func TestReplyRequiresUltimateRole(t *testing.T) {
	f := newAPIFixture(t)
	_ = f.signup(t, "alice", "pw1") // ultimate
	bobToken := f.signup(t, "bob", "pw2")

	w := f.doJSON(t, http.MethodPost, "/chats", bobToken, gin.H{"charId": 1, "text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))

	w = f.doJSON(t, http.MethodPost, fmt.Sprintf("/chats/%d/reply", msg.ID), bobToken, gin.H{"text": "hax"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_ROLE")

	// Message untouched.
	all := f.chats.List()
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusWaiting, all[0].Status)
}

func TestUltimateReplyMarksMessageReady(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken := f.signup(t, "alice", "pw1")
	bobToken := f.signup(t, "bob", "pw2")

	w := f.doJSON(t, http.MethodPost, "/chats", bobToken, gin.H{"charId": 1, "text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))

	audio := "/uploads/audio/greeting.webm"
	w = f.doJSON(t, http.MethodPost, fmt.Sprintf("/chats/%d/reply", msg.ID), aliceToken,
		gin.H{"text": "hello back", "audio": audio})
	require.Equal(t, http.StatusOK, w.Code)

	var replied models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replied))
	assert.Equal(t, models.StatusReady, replied.Status)
	assert.Equal(t, "hello back", replied.Text)
	require.NotNil(t, replied.Audio)
	assert.Equal(t, audio, *replied.Audio)
}

func TestReplyUnknownMessageIs404(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken := f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodPost, "/chats/9999/reply", aliceToken, gin.H{"text": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "MESSAGE_NOT_FOUND")
}

func TestEveryMutationNotifiesOnce(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken := f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodPost, "/chats", aliceToken, gin.H{"charId": 1, "text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), f.notifier.count.Load())

	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))

	w = f.doJSON(t, http.MethodPost, fmt.Sprintf("/chats/%d/reply", msg.ID), aliceToken, gin.H{"text": "yo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), f.notifier.count.Load())

	// Failed mutations notify nobody.
	w = f.doJSON(t, http.MethodPost, "/chats/9999/reply", aliceToken, gin.H{"text": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(2), f.notifier.count.Load())
}
