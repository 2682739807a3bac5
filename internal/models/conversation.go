package models

import (
	"time"
)

// ConversationLifecycle is the operator-controlled state of a conversation
type ConversationLifecycle string

const (
	ConversationActive   ConversationLifecycle = "active"
	ConversationArchived ConversationLifecycle = "archived"
	ConversationDeleted  ConversationLifecycle = "deleted"
)

// ConversationState is the per-conversation override record. Archived
// and deleted are mutually exclusive; deleted is terminal.
type ConversationState struct {
	ConversationID string    `json:"conversation_id" gorm:"primaryKey"`
	Archived       bool      `json:"archived"`
	Deleted        bool      `json:"deleted"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Lifecycle derives the lifecycle state from the stored flags
func (s *ConversationState) Lifecycle() ConversationLifecycle {
	switch {
	case s == nil:
		return ConversationActive
	case s.Deleted:
		return ConversationDeleted
	case s.Archived:
		return ConversationArchived
	default:
		return ConversationActive
	}
}

// ConversationSummary is one entry of the operator-facing directory,
// derived from the message log, the account list and the state table.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	Registered     bool      `json:"registered"`
	Archived       bool      `json:"archived"`
	LastActivityAt time.Time `json:"last_activity_at"`
	LastBody       string    `json:"last_body,omitempty"`
}

// Directory is the partitioned, recency-sorted conversation listing
type Directory struct {
	Active   []ConversationSummary `json:"active"`
	Archived []ConversationSummary `json:"archived"`
}
