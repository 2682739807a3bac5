package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"
)

// PresenceStore is the key-value surface the presence lease needs. The
// Redis client satisfies it; tests use an in-memory map.
type PresenceStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetOptional(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// PresenceService tracks who is currently connected to a conversation
// as a TTL lease per participant. A client going away without saying
// goodbye just stops refreshing and the lease lapses on its own; there
// is no row to clean up and no stale "online" forever.
type PresenceService struct {
	store PresenceStore
	feed  ChangeFeed
	log   *logger.Logger
	ttl   time.Duration
}

func NewPresenceService(store PresenceStore, feed ChangeFeed, log *logger.Logger, ttl time.Duration) *PresenceService {
	return &PresenceService{
		store: store,
		feed:  feed,
		log:   log,
		ttl:   ttl,
	}
}

func presenceKey(conversationID string, role models.ParticipantRole) string {
	return "presence:" + conversationID + ":" + string(role)
}

// MarkOnline writes (or rewrites) the lease for a participant and
// announces the change on the feed
func (s *PresenceService) MarkOnline(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.NewValidationError("conversation_id is required")
	}

	record := models.PresenceRecord{
		ParticipantID: participantID,
		Role:          role,
		IsOnline:      true,
		UpdatedAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.NewInternalServerError("PRESENCE_ENCODE_FAILED", "failed to encode presence record")
	}

	if err := s.store.Set(ctx, presenceKey(conversationID, role), payload, s.ttl); err != nil {
		s.log.Warn("presence lease write failed",
			"conversation_id", conversationID,
			"role", string(role),
			"error", err,
		)
		return errors.NewTransportError("failed to update presence")
	}

	s.announce(ctx, conversationID, participantID, string(models.PresenceOnline))
	return nil
}

// Refresh extends the lease. If it already lapsed the participant is
// re-marked online, so a brief hiccup never strands a live session in
// the offline state.
func (s *PresenceService) Refresh(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error {
	ok, err := s.store.Expire(ctx, presenceKey(conversationID, role), s.ttl)
	if err != nil {
		s.log.Warn("presence lease refresh failed",
			"conversation_id", conversationID,
			"error", err,
		)
		return errors.NewTransportError("failed to refresh presence")
	}
	if !ok {
		return s.MarkOnline(ctx, conversationID, participantID, role)
	}
	return nil
}

// MarkOffline drops the lease immediately (graceful disconnect)
func (s *PresenceService) MarkOffline(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error {
	if err := s.store.Del(ctx, presenceKey(conversationID, role)); err != nil {
		s.log.Warn("presence lease delete failed",
			"conversation_id", conversationID,
			"error", err,
		)
		return errors.NewTransportError("failed to clear presence")
	}
	s.announce(ctx, conversationID, participantID, string(models.PresenceOffline))
	return nil
}

// Status reads a participant's presence. A missing or expired lease
// reads as unknown, which clients render the same as offline.
func (s *PresenceService) Status(ctx context.Context, conversationID string, role models.ParticipantRole) (models.PresenceStatus, *models.PresenceRecord, error) {
	raw, found, err := s.store.GetOptional(ctx, presenceKey(conversationID, role))
	if err != nil {
		return models.PresenceUnknown, nil, errors.NewTransportError("failed to read presence")
	}
	if !found {
		return models.PresenceUnknown, nil, nil
	}

	var record models.PresenceRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.log.Warn("malformed presence record",
			"conversation_id", conversationID,
			"error", err,
		)
		return models.PresenceUnknown, nil, nil
	}
	if !record.IsOnline {
		return models.PresenceOffline, &record, nil
	}
	return models.PresenceOnline, &record, nil
}

func (s *PresenceService) announce(ctx context.Context, conversationID, participantID, status string) {
	event := FeedMessage{
		Kind:           EventPresenceChanged,
		ConversationID: conversationID,
		SenderID:       participantID,
		Status:         status,
		At:             time.Now().UTC(),
	}
	payload, err := event.Encode()
	if err != nil {
		s.log.Error("failed to encode presence event", "error", err)
		return
	}
	if err := s.feed.Publish(ctx, PresenceChannel(conversationID), payload); err != nil {
		s.log.Warn("presence publish failed",
			"channel", PresenceChannel(conversationID),
			"error", err,
		)
	}
}
