package models

// VoiceRecording represents an uploaded audio file. Recordings are immutable
// once created and are not linked to any message automatically; the
// privileged user references them manually when replying.
type VoiceRecording struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	UserID   int64  `json:"userId"`
	Time     int64  `json:"time"`
}
