package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Channel layout for the chat change feed. Every mutation of the
// message log or a presence lease publishes an event so connected
// sessions and pollers can react without rescanning the tables.
const (
	// GlobalChannel carries every chat event; the operator dashboard
	// subscribes here to keep its directory fresh.
	GlobalChannel = "chat:events"

	conversationChannelPrefix = "chat:conv:"
	presenceChannelPrefix     = "chat:presence:"
)

// Event kinds carried on the feed
const (
	EventMessageAppended    = "message.appended"
	EventConversationPurged = "conversation.purged"
	EventPresenceChanged    = "presence.changed"
)

// ConversationChannel returns the per-conversation message channel
func ConversationChannel(conversationID string) string {
	return conversationChannelPrefix + conversationID
}

// PresenceChannel returns the per-conversation presence channel
func PresenceChannel(conversationID string) string {
	return presenceChannelPrefix + conversationID
}

// FeedMessage is the wire form of one change-feed event
type FeedMessage struct {
	Kind           string    `json:"kind"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id,omitempty"`
	MessageID      uint      `json:"message_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	At             time.Time `json:"at"`
}

// Encode serializes the event for publishing
func (m FeedMessage) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding feed message: %w", err)
	}
	return string(data), nil
}

// DecodeFeedMessage parses a payload received from the feed
func DecodeFeedMessage(payload string) (FeedMessage, error) {
	var m FeedMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return FeedMessage{}, fmt.Errorf("decoding feed message: %w", err)
	}
	return m, nil
}

// ChangeFeed is the publishing side of the chat change feed. The Redis
// client satisfies it; tests substitute an in-memory fake.
type ChangeFeed interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}
