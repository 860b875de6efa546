package service

import (
	"time"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/store"
)

// VoiceService records uploaded audio files in the voices collection.
// Recordings are never mutated or deleted.
type VoiceService struct {
	voices   *store.Collection[models.VoiceRecording]
	notifier Notifier
}

// NewVoiceService creates a new voice service.
func NewVoiceService(voices *store.Collection[models.VoiceRecording], notifier Notifier) *VoiceService {
	return &VoiceService{voices: voices, notifier: notifier}
}

// Record registers an already-stored audio file and notifies connected
// clients that a voice upload is pending.
func (s *VoiceService) Record(filename string, userID int64) (models.VoiceRecording, error) {
	rec, err := s.voices.Append(func(id int64, existing []models.VoiceRecording) (models.VoiceRecording, error) {
		return models.VoiceRecording{
			ID:       id,
			Filename: filename,
			UserID:   userID,
			Time:     time.Now().UnixMilli(),
		}, nil
	})
	if err != nil {
		return models.VoiceRecording{}, err
	}

	s.notifier.Notify(EventVoicePending)
	return rec, nil
}

// List returns every recording in upload order.
func (s *VoiceService) List() []models.VoiceRecording {
	return s.voices.All()
}
