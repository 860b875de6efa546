package api

import (
	"net/http"
	"strconv"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/service"
	apperrors "human-ai-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the message lifecycle over HTTP. Clients reacting to
// a state-changed channel event pull the full collection from here.
type ChatHandler struct {
	chats *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// ListMessages returns every message in insertion order.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.chats.List())
}

// PostMessage creates a waiting message for a character.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req models.PostMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_BODY", "Could not parse request"))
		return
	}

	msg, err := h.chats.PostMessage(req.CharID, req.Text)
	if err != nil {
		if err == service.ErrMissingText {
			c.Error(apperrors.NewBadRequestError("MISSING_TEXT", "Message text is required"))
			return
		}
		c.Error(apperrors.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// Reply attaches the privileged answer to a message and marks it ready.
// The route is gated on the ultimate role; an unknown identifier is a 404
// here, unlike on the channel surface where it is silently dropped.
func (h *ChatHandler) Reply(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_ID", "Message id must be a number"))
		return
	}

	var req models.ReplyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_BODY", "Could not parse request"))
		return
	}

	msg, err := h.chats.AttachReply(id, req.Text, req.Audio)
	if err != nil {
		if err == service.ErrMessageNotFound {
			c.Error(apperrors.NewNotFoundError("MESSAGE_NOT_FOUND", "No message with that id"))
			return
		}
		c.Error(apperrors.FromError(err))
		return
	}

	c.JSON(http.StatusOK, msg)
}
