package chat

import "time"

// Message is a single conversation turn. Messages are immutable once
// appended to a conversation.
type Message struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	IsUser         bool      `json:"isUser"`
	AttachmentPath string    `json:"attachmentPath,omitempty"`
}
