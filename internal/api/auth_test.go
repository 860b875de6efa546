package api

import (
	"net/http"
	"testing"

	"human-ai-chat/backend/internal/models"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupFirstUserIsUltimate(t *testing.T) {
	f := newAPIFixture(t)

	w := f.doJSON(t, http.MethodPost, "/signup", "", gin.H{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User  models.UserResponse `json:"user"`
		Token string              `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleUltimate, resp.User.Role)
	assert.Equal(t, models.DefaultTheme, resp.User.Theme)
	assert.NotEmpty(t, resp.Token)

	// Session cookie is set alongside the token.
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=")

	w = f.doJSON(t, http.MethodPost, "/signup", "", gin.H{"username": "bob", "password": "pw2"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleUser, resp.User.Role)
}

func TestSignupValidation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.doJSON(t, http.MethodPost, "/signup", "", gin.H{"username": "", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FIELDS")

	f.signup(t, "alice", "pw1")
	w = f.doJSON(t, http.MethodPost, "/signup", "", gin.H{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "USERNAME_TAKEN")
}

func TestLogin(t *testing.T) {
	f := newAPIFixture(t)
	f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "pw1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.doJSON(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestMe(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)

	// The password never appears in a response.
	assert.NotContains(t, w.Body.String(), "pw1")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestMeRequiresSession(t *testing.T) {
	f := newAPIFixture(t)

	w := f.doJSON(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.doJSON(t, http.MethodGet, "/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "pw1")

	w := f.doJSON(t, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=;")
}

func TestSessionCookieAuthenticates(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "pw1")

	req, w := newCookieRequest(http.MethodGet, "/me", token)
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
