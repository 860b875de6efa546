package service

import (
	"sync"
	"testing"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/store"
	"human-ai-chat/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", JSON: false})
	users := store.Open(t.TempDir(), "users", func(u models.User) int64 { return u.ID }, log, nil)
	return NewUserService(users)
}

func TestFirstRegistrantBecomesUltimate(t *testing.T) {
	svc := newUserService(t)

	alice, err := svc.Register("alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUltimate, alice.Role)
	assert.Equal(t, models.DefaultTheme, alice.Theme)

	bob, err := svc.Register("bob", "pw2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, bob.Role)
}

func TestConcurrentRegistrationsYieldExactlyOneUltimate(t *testing.T) {
	svc := newUserService(t)

	const n = 20
	var wg sync.WaitGroup
	results := make([]models.User, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.Register(string(rune('a'+i))+"-user", "pw")
			assert.NoError(t, err)
			results[i] = u
		}(i)
	}
	wg.Wait()

	ultimates := 0
	seen := map[int64]bool{}
	for _, u := range results {
		if u.Role == models.RoleUltimate {
			ultimates++
		}
		assert.False(t, seen[u.ID], "duplicate identifier %d", u.ID)
		seen[u.ID] = true
	}
	assert.Equal(t, 1, ultimates)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("", "pw")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Register("alice", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("alice", "pw1")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Usernames are matched case-sensitively; a different casing is a
	// different account.
	_, err = svc.Register("Alice", "pw")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("alice", "pw1")
	require.NoError(t, err)

	u, err := svc.Authenticate("alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByID(t *testing.T) {
	svc := newUserService(t)

	alice, err := svc.Register("alice", "pw1")
	require.NoError(t, err)

	got, err := svc.GetByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = svc.GetByID(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
