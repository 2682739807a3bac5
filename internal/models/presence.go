package models

import (
	"time"
)

// PresenceStatus is a tri-state read of a participant's presence lease
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
	// PresenceUnknown means no lease exists (never seen, or expired)
	PresenceUnknown PresenceStatus = "unknown"
)

// ParticipantRole distinguishes the two sides of a conversation
type ParticipantRole string

const (
	RoleOperator    ParticipantRole = "operator"
	RoleParticipant ParticipantRole = "participant"
)

// PresenceRecord is the lease document stored per participant. It is a
// best-effort heartbeat; an unrefreshed record simply expires.
type PresenceRecord struct {
	ParticipantID string          `json:"participant_id"`
	Role          ParticipantRole `json:"role"`
	IsOnline      bool            `json:"is_online"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
