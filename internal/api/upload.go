package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"human-ai-chat/backend/internal/service"
	apperrors "human-ai-chat/backend/pkg/errors"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadHandler receives multipart uploads and stores them under the
// public uploads directories with generated filenames.
type UploadHandler struct {
	voices     *service.VoiceService
	characters *service.CharacterService
	audioDir   string
	imagesDir  string
	logger     *logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(voices *service.VoiceService, characters *service.CharacterService, audioDir, imagesDir string, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		voices:     voices,
		characters: characters,
		audioDir:   audioDir,
		imagesDir:  imagesDir,
		logger:     logger,
	}
}

// UploadVoice stores an audio file and records it in the voices
// collection. Connected channel clients get a voice-pending notification.
func (h *UploadHandler) UploadVoice(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		c.Error(apperrors.NewBadRequestError("MISSING_FILE", "An audio file is required"))
		return
	}

	filename := generatedFilename(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.audioDir, filename)); err != nil {
		h.logger.LogError(err, "voice upload write failed", "filename", filename)
		c.Error(apperrors.NewInternalServerError("UPLOAD_FAILED", "Failed to store audio file"))
		return
	}

	rec, err := h.voices.Record(filename, user.ID)
	if err != nil {
		c.Error(apperrors.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// UploadCharacterImage stores an image and attaches it to a character. The
// file is written before the character lookup, so an unknown charId leaves
// an orphaned file behind, the same way the multipart layer it replaces
// kept its temp file.
func (h *UploadHandler) UploadCharacterImage(c *gin.Context) {
	charID, err := strconv.ParseInt(c.PostForm("charId"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_CHAR_ID", "charId must be a number"))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.Error(apperrors.NewBadRequestError("MISSING_FILE", "An image file is required"))
		return
	}

	filename := generatedFilename(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.imagesDir, filename)); err != nil {
		h.logger.LogError(err, "image upload write failed", "filename", filename)
		c.Error(apperrors.NewInternalServerError("UPLOAD_FAILED", "Failed to store image file"))
		return
	}

	character, err := h.characters.AttachImage(charID, "/uploads/images/"+filename)
	if err != nil {
		if err == service.ErrCharacterNotFound {
			c.Error(apperrors.NewNotFoundError("CHARACTER_NOT_FOUND", "No character with that id"))
			return
		}
		c.Error(apperrors.FromError(err))
		return
	}

	c.JSON(http.StatusOK, character)
}

// generatedFilename keeps the original extension but replaces the name with
// a collision-free identifier.
func generatedFilename(original string) string {
	return fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(filepath.Base(original)))
}
