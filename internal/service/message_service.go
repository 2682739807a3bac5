package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/repository"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/shared/observability"
)

// MessageService owns the append-only message log. Validation runs
// before any store write; a rejected send leaves no trace.
type MessageService struct {
	repo          repository.MessageRepository
	feed          ChangeFeed
	log           *logger.Logger
	metrics       *observability.Metrics
	operatorID    string
	maxBodyLength int
	recentWindow  int
}

// MessageServiceOptions carries the tunables the service needs from
// application configuration
type MessageServiceOptions struct {
	OperatorID    string
	MaxBodyLength int
	RecentWindow  int
}

func NewMessageService(repo repository.MessageRepository, feed ChangeFeed, log *logger.Logger, metrics *observability.Metrics, opts MessageServiceOptions) *MessageService {
	return &MessageService{
		repo:          repo,
		feed:          feed,
		log:           log,
		metrics:       metrics,
		operatorID:    opts.OperatorID,
		maxBodyLength: opts.MaxBodyLength,
		recentWindow:  opts.RecentWindow,
	}
}

// Append validates and durably stores one message, then publishes a
// change event for the conversation. The sender is classified as
// operator by identity, not by a caller-supplied flag.
func (s *MessageService) Append(ctx context.Context, conversationID, senderID, body string) (*models.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		s.metrics.MessagesRejected.Inc()
		return nil, errors.NewValidationError("conversation_id is required")
	}
	if strings.TrimSpace(senderID) == "" {
		s.metrics.MessagesRejected.Inc()
		return nil, errors.NewValidationError("sender_id is required")
	}
	if strings.TrimSpace(body) == "" {
		s.metrics.MessagesRejected.Inc()
		return nil, errors.NewValidationError("message body must not be empty")
	}
	if s.maxBodyLength > 0 && len(body) > s.maxBodyLength {
		s.metrics.MessagesRejected.Inc()
		return nil, errors.NewValidationError(
			fmt.Sprintf("message body exceeds %d characters", s.maxBodyLength))
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		FromOperator:   senderID == s.operatorID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(message); err != nil {
		s.log.Error("failed to append message",
			"conversation_id", conversationID,
			"error", err,
		)
		return nil, errors.NewTransportError("failed to store message")
	}

	s.metrics.MessagesAppended.Inc()
	s.publish(ctx, FeedMessage{
		Kind:           EventMessageAppended,
		ConversationID: conversationID,
		SenderID:       senderID,
		MessageID:      message.ID,
		At:             message.CreatedAt,
	})

	return message, nil
}

// ListByConversation returns the conversation log in chronological
// order, oldest first
func (s *MessageService) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.NewValidationError("conversation_id is required")
	}
	messages, err := s.repo.ListByConversation(conversationID)
	if err != nil {
		s.log.Error("failed to list messages",
			"conversation_id", conversationID,
			"error", err,
		)
		return nil, errors.NewTransportError("failed to load messages")
	}
	return messages, nil
}

// ListRecent returns the newest messages across every conversation,
// bounded by the configured window. The directory is derived from this.
func (s *MessageService) ListRecent(ctx context.Context) ([]models.Message, error) {
	messages, err := s.repo.ListRecent(s.recentWindow)
	if err != nil {
		s.log.Error("failed to list recent messages", "error", err)
		return nil, errors.NewTransportError("failed to load recent messages")
	}
	return messages, nil
}

// Purge removes every message of a conversation. Called when a
// conversation is deleted; the log and the conversation go together.
func (s *MessageService) Purge(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.NewValidationError("conversation_id is required")
	}
	if err := s.repo.Purge(conversationID); err != nil {
		s.log.Error("failed to purge conversation",
			"conversation_id", conversationID,
			"error", err,
		)
		return errors.NewTransportError("failed to purge conversation")
	}

	s.metrics.ConversationsPurge.Inc()
	s.publish(ctx, FeedMessage{
		Kind:           EventConversationPurged,
		ConversationID: conversationID,
		At:             time.Now().UTC(),
	})
	return nil
}

// publish emits an event on the per-conversation channel and the
// global channel. Feed failures are logged, never surfaced: the write
// already succeeded and pollers will catch up.
func (s *MessageService) publish(ctx context.Context, event FeedMessage) {
	payload, err := event.Encode()
	if err != nil {
		s.log.Error("failed to encode feed event", "error", err)
		return
	}
	if err := s.feed.Publish(ctx, ConversationChannel(event.ConversationID), payload); err != nil {
		s.log.Warn("feed publish failed",
			"channel", ConversationChannel(event.ConversationID),
			"error", err,
		)
	}
	if err := s.feed.Publish(ctx, GlobalChannel, payload); err != nil {
		s.log.Warn("feed publish failed", "channel", GlobalChannel, "error", err)
	}
}
