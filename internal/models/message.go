package models

import (
	"time"
)

// Message is the canonical chat message record. A conversation is keyed
// by the non-operator participant's email; messages are append-only and
// never edited, only purged with their whole conversation.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"index:idx_messages_conv_created,priority:1"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	FromOperator   bool      `json:"from_operator"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_messages_conv_created,priority:2"`
}

// SendMessageRequest is the payload for the REST send endpoint
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Body           string `json:"body"`
}

// SyntheticMessage is the non-persisted welcome message shown to a
// first-time visitor before any real message exists. It never reaches
// the store and disappears once a real message is present.
type SyntheticMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	FromOperator   bool      `json:"from_operator"`
	Synthetic      bool      `json:"synthetic"`
	CreatedAt      time.Time `json:"created_at"`
}
