package service

import (
	"errors"
	"time"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/store"
	"human-ai-chat/backend/pkg/metrics"
)

var (
	ErrMissingText     = errors.New("message text is required")
	ErrMessageNotFound = errors.New("message not found")
)

// ChatService owns the message lifecycle: creation in waiting state and the
// single forward transition to ready when a privileged reply attaches.
// Every successful mutation persists the chats collection and emits exactly
// one state-changed notification.
type ChatService struct {
	chats    *store.Collection[models.ChatMessage]
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewChatService creates a new chat service.
func NewChatService(chats *store.Collection[models.ChatMessage], notifier Notifier, m *metrics.Metrics) *ChatService {
	return &ChatService{chats: chats, notifier: notifier, metrics: m}
}

// PostMessage appends a new waiting message from a user. The character
// reference is deliberately not validated against the characters
// collection; a dangling charId is accepted.
func (s *ChatService) PostMessage(charID int64, text string) (models.ChatMessage, error) {
	if text == "" {
		return models.ChatMessage{}, ErrMissingText
	}

	msg, err := s.chats.Append(func(id int64, existing []models.ChatMessage) (models.ChatMessage, error) {
		return models.ChatMessage{
			ID:     id,
			CharID: charID,
			From:   models.SenderUser,
			Text:   text,
			Audio:  nil,
			Status: models.StatusWaiting,
			Time:   time.Now().UnixMilli(),
		}, nil
	})
	if err != nil {
		return models.ChatMessage{}, err
	}

	if s.metrics != nil {
		s.metrics.ChatMessages.WithLabelValues(models.StatusWaiting).Inc()
	}
	s.notifier.Notify(EventStateChanged)
	return msg, nil
}

// AttachReply overwrites the message text, sets the optional audio
// reference and marks the message ready. A second reply to the same message
// overwrites again; last write wins. An unknown identifier yields
// ErrMessageNotFound and no notification.
func (s *ChatService) AttachReply(id int64, text string, audio *string) (models.ChatMessage, error) {
	updated, found, err := s.chats.Update(id, func(m *models.ChatMessage) {
		m.Text = text
		m.Audio = audio
		m.From = models.SenderUltimate
		m.Status = models.StatusReady
	})
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !found {
		return models.ChatMessage{}, ErrMessageNotFound
	}

	if s.metrics != nil {
		s.metrics.ChatMessages.WithLabelValues(models.StatusReady).Inc()
	}
	s.notifier.Notify(EventStateChanged)
	return updated, nil
}

// List returns every message in insertion order.
func (s *ChatService) List() []models.ChatMessage {
	return s.chats.All()
}
