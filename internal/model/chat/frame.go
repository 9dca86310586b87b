package chat

import "time"

// Frame types exchanged over the persistent channel. An empty type is
// treated as a content frame; early clients never set it.
const (
	FrameJoin    = "join"
	FrameMessage = "message"
)

// Frame is one structured unit on the websocket: the join control
// frame sent right after connecting, or a content frame.
type Frame struct {
	Type          string    `json:"type,omitempty"`
	ChatID        string    `json:"chatId,omitempty"`
	Role          string    `json:"role,omitempty"`
	Content       string    `json:"content,omitempty"`
	SenderRole    string    `json:"senderRole,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitzero"`
}

// JoinFrame builds the first outbound frame after a connect: it binds
// the connection to a chat and tells the server which side joined.
func JoinFrame(chatID string, role Role) Frame {
	return Frame{Type: FrameJoin, ChatID: chatID, Role: role.Wire()}
}

// MessageFrame wraps a message for transmission.
func MessageFrame(m Message) Frame {
	return Frame{
		Type:          FrameMessage,
		ChatID:        m.ChatID,
		Content:       m.Content,
		SenderRole:    m.SenderRole,
		CorrelationID: m.CorrelationID,
		Timestamp:     m.CreatedAt,
	}
}

// IsContent reports whether the frame carries conversation content.
func (f Frame) IsContent() bool {
	return f.Type == FrameMessage || f.Type == ""
}

// AsMessage converts a content frame back into a message.
func (f Frame) AsMessage() Message {
	return Message{
		ChatID:        f.ChatID,
		Content:       f.Content,
		SenderRole:    f.SenderRole,
		CorrelationID: f.CorrelationID,
		CreatedAt:     f.Timestamp,
	}
}
