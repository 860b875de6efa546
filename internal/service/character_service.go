package service

import (
	"errors"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/store"
)

var (
	ErrMissingName       = errors.New("character name is required")
	ErrCharacterNotFound = errors.New("character not found")
)

// CharacterService manages the characters collection.
type CharacterService struct {
	characters *store.Collection[models.Character]
}

// NewCharacterService creates a new character service.
func NewCharacterService(characters *store.Collection[models.Character]) *CharacterService {
	return &CharacterService{characters: characters}
}

// Create adds a character with no image attached yet.
func (s *CharacterService) Create(name string) (models.Character, error) {
	if name == "" {
		return models.Character{}, ErrMissingName
	}

	return s.characters.Append(func(id int64, existing []models.Character) (models.Character, error) {
		return models.Character{ID: id, Name: name, Image: nil}, nil
	})
}

// List returns all characters in creation order.
func (s *CharacterService) List() []models.Character {
	return s.characters.All()
}

// Get resolves a character identifier.
func (s *CharacterService) Get(id int64) (models.Character, error) {
	c, ok := s.characters.Find(id)
	if !ok {
		return models.Character{}, ErrCharacterNotFound
	}
	return c, nil
}

// AttachImage sets the character's image to the given relative path.
func (s *CharacterService) AttachImage(id int64, path string) (models.Character, error) {
	updated, found, err := s.characters.Update(id, func(c *models.Character) {
		c.Image = &path
	})
	if err != nil {
		return models.Character{}, err
	}
	if !found {
		return models.Character{}, ErrCharacterNotFound
	}
	return updated, nil
}
