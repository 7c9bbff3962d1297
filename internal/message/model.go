package message

import "time"

// Message is a single text message from a person's history. Immutable once
// parsed; ordered by timestamp within a conversation.
type Message struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	SenderID       string    `json:"sender_id"`
	Timestamp      time.Time `json:"timestamp"`
	IsFromMe       bool      `json:"is_from_me"`
	ConversationID string    `json:"conversation_id,omitempty"`
}

// Export is the JSON shape produced by the iMessage exporter and accepted by
// the profile message upload endpoint.
type Export struct {
	ConversationID string    `json:"conversation_id,omitempty"`
	Participants   []string  `json:"participants,omitempty"`
	Messages       []Message `json:"messages"`
}
