package models

// Message status lifecycle: every message is created waiting and moves to
// ready exactly once, when a privileged reply lands. Ready is terminal.
const (
	StatusWaiting = "waiting"
	StatusReady   = "ready"
)

// Senders recorded on a message.
const (
	SenderUser     = "user"
	SenderUltimate = "ultimate"
)

// ChatMessage represents one entry in the chats collection. CharID is not
// validated against the characters collection on creation; a dangling
// reference is accepted. Time is unix milliseconds at creation.
type ChatMessage struct {
	ID     int64   `json:"id"`
	CharID int64   `json:"charId"`
	From   string  `json:"from"`
	Text   string  `json:"text"`
	Audio  *string `json:"audio"`
	Status string  `json:"status"`
	Time   int64   `json:"time"`
}

// PostMessageRequest is the request structure for posting a new message.
type PostMessageRequest struct {
	CharID int64  `json:"charId" form:"charId"`
	Text   string `json:"text" form:"text"`
}

// ReplyRequest is the request structure for the privileged reply. Audio is
// an optional relative path to an uploaded recording.
type ReplyRequest struct {
	Text  string  `json:"text" form:"text"`
	Audio *string `json:"audio" form:"audio"`
}
