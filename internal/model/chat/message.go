package chat

import "time"

// Message is one turn of a conversation. SenderRole carries "Admin"
// for staff replies and the guest's display name otherwise, which is
// what the admin view needs to tell individual guests apart.
// CorrelationID is generated by the sending client and lets it drop
// the server's echo of its own frame.
type Message struct {
	ID            string    `json:"id,omitempty"`
	ChatID        string    `json:"chatId"`
	Content       string    `json:"content"`
	SenderRole    string    `json:"senderRole"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CreatedAt     time.Time `json:"timestamp"`
}
