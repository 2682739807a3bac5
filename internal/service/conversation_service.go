package service

import (
	"context"
	"strings"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/repository"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"
)

// LifecycleAction is an operator action on a conversation
type LifecycleAction string

const (
	ActionArchive   LifecycleAction = "archive"
	ActionUnarchive LifecycleAction = "unarchive"
	ActionDelete    LifecycleAction = "delete"
)

// NextState applies a lifecycle action to the current state. Repeating
// an action is a no-op, deletion is terminal. The transition table is
// pure; persistence and the message purge live in the service.
func NextState(current models.ConversationLifecycle, action LifecycleAction) (models.ConversationLifecycle, error) {
	if current == models.ConversationDeleted {
		return current, errors.NewNotFoundError("CONVERSATION_DELETED", "conversation has been deleted")
	}

	switch action {
	case ActionArchive:
		return models.ConversationArchived, nil
	case ActionUnarchive:
		return models.ConversationActive, nil
	case ActionDelete:
		return models.ConversationDeleted, nil
	default:
		return current, errors.NewValidationError("unknown lifecycle action")
	}
}

// MessagePurger is the slice of the message service the conversation
// service needs when a delete cascades to the log
type MessagePurger interface {
	Purge(ctx context.Context, conversationID string) error
}

// ConversationService persists lifecycle transitions and cascades a
// delete to the conversation's message log
type ConversationService struct {
	states    repository.StateRepository
	messages  MessagePurger
	directory *DirectoryService
	log       *logger.Logger
}

func NewConversationService(states repository.StateRepository, messages MessagePurger, directory *DirectoryService, log *logger.Logger) *ConversationService {
	return &ConversationService{
		states:    states,
		messages:  messages,
		directory: directory,
		log:       log,
	}
}

// Archive moves a conversation out of the active listing
func (s *ConversationService) Archive(ctx context.Context, conversationID string) error {
	return s.apply(ctx, conversationID, ActionArchive)
}

// Unarchive restores an archived conversation to the active listing
func (s *ConversationService) Unarchive(ctx context.Context, conversationID string) error {
	return s.apply(ctx, conversationID, ActionUnarchive)
}

// Delete marks the conversation deleted and purges its message log.
// The state record survives as a tombstone so the id cannot come back
// through the directory.
func (s *ConversationService) Delete(ctx context.Context, conversationID string) error {
	if err := s.apply(ctx, conversationID, ActionDelete); err != nil {
		return err
	}
	if err := s.messages.Purge(ctx, conversationID); err != nil {
		s.log.Error("delete cascade failed",
			"conversation_id", conversationID,
			"error", err,
		)
		return err
	}
	return nil
}

// State reads the current lifecycle of a conversation. A conversation
// with no override record is active.
func (s *ConversationService) State(ctx context.Context, conversationID string) (models.ConversationLifecycle, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", errors.NewValidationError("conversation_id is required")
	}
	record, err := s.states.Get(conversationID)
	if err != nil {
		return "", errors.NewTransportError("failed to load conversation state")
	}
	return record.Lifecycle(), nil
}

func (s *ConversationService) apply(ctx context.Context, conversationID string, action LifecycleAction) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.NewValidationError("conversation_id is required")
	}

	record, err := s.states.Get(conversationID)
	if err != nil {
		s.log.Error("failed to load conversation state",
			"conversation_id", conversationID,
			"error", err,
		)
		return errors.NewTransportError("failed to load conversation state")
	}

	current := record.Lifecycle()
	next, err := NextState(current, action)
	if err != nil {
		return err
	}
	if next == current {
		return nil
	}

	state := &models.ConversationState{
		ConversationID: conversationID,
		Archived:       next == models.ConversationArchived,
		Deleted:        next == models.ConversationDeleted,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.states.Upsert(state); err != nil {
		s.log.Error("failed to persist conversation state",
			"conversation_id", conversationID,
			"error", err,
		)
		return errors.NewTransportError("failed to update conversation state")
	}

	s.directory.Invalidate()
	return nil
}
