package service

import (
	"errors"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/store"
)

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService handles registration, credential checks and identity lookup
// over the users collection.
type UserService struct {
	users *store.Collection[models.User]
}

// NewUserService creates a new user service.
func NewUserService(users *store.Collection[models.User]) *UserService {
	return &UserService{users: users}
}

// Register creates a new account. The first account ever created receives
// the ultimate role; every later one is a plain user. The duplicate check
// and role assignment run atomically with the insert, so concurrent
// registrations cannot both become ultimate. The collection is persisted
// before this returns.
func (s *UserService) Register(username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, ErrMissingFields
	}

	return s.users.Append(func(id int64, existing []models.User) (models.User, error) {
		for _, u := range existing {
			if u.Username == username {
				return models.User{}, ErrUsernameTaken
			}
		}

		role := models.RoleUser
		if len(existing) == 0 {
			role = models.RoleUltimate
		}

		return models.User{
			ID:       id,
			Username: username,
			Password: password,
			Role:     role,
			Theme:    models.DefaultTheme,
		}, nil
	})
}

// Authenticate checks credentials with an exact match on username and
// password against the stored account.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	for _, u := range s.users.All() {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

// GetByID resolves a user identifier to the stored account.
func (s *UserService) GetByID(id int64) (models.User, error) {
	u, ok := s.users.Find(id)
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}
