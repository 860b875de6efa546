package api

import (
	"net/http"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/service"
	apperrors "human-ai-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CharacterHandler handles character creation and listing.
type CharacterHandler struct {
	characters *service.CharacterService
}

// NewCharacterHandler creates a new character handler.
func NewCharacterHandler(characters *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// CreateCharacter adds a character with no image. The image is attached
// later through the upload endpoint.
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_BODY", "Could not parse request"))
		return
	}

	character, err := h.characters.Create(req.Name)
	if err != nil {
		if err == service.ErrMissingName {
			c.Error(apperrors.NewBadRequestError("MISSING_NAME", "Character name is required"))
			return
		}
		c.Error(apperrors.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, character)
}

// ListCharacters returns all characters in creation order.
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	c.JSON(http.StatusOK, h.characters.List())
}
