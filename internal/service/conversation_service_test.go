package service

import (
	"context"
	"testing"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStateRepo struct {
	states map[string]*models.ConversationState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[string]*models.ConversationState)}
}

func (r *fakeStateRepo) Get(conversationID string) (*models.ConversationState, error) {
	state, ok := r.states[conversationID]
	if !ok {
		return nil, nil
	}
	copied := *state
	return &copied, nil
}

func (r *fakeStateRepo) Upsert(state *models.ConversationState) error {
	copied := *state
	r.states[state.ConversationID] = &copied
	return nil
}

func (r *fakeStateRepo) List() ([]models.ConversationState, error) {
	var out []models.ConversationState
	for _, s := range r.states {
		out = append(out, *s)
	}
	return out, nil
}

type fakePurger struct {
	purged []string
}

func (p *fakePurger) Purge(ctx context.Context, conversationID string) error {
	p.purged = append(p.purged, conversationID)
	return nil
}

func TestNextState(t *testing.T) {
	tests := []struct {
		name    string
		current models.ConversationLifecycle
		action  LifecycleAction
		want    models.ConversationLifecycle
		wantErr bool
	}{
		{"archive active", models.ConversationActive, ActionArchive, models.ConversationArchived, false},
		{"archive archived is idempotent", models.ConversationArchived, ActionArchive, models.ConversationArchived, false},
		{"unarchive archived", models.ConversationArchived, ActionUnarchive, models.ConversationActive, false},
		{"unarchive active is idempotent", models.ConversationActive, ActionUnarchive, models.ConversationActive, false},
		{"delete active", models.ConversationActive, ActionDelete, models.ConversationDeleted, false},
		{"delete archived", models.ConversationArchived, ActionDelete, models.ConversationDeleted, false},
		{"deleted is terminal for archive", models.ConversationDeleted, ActionArchive, models.ConversationDeleted, true},
		{"deleted is terminal for delete", models.ConversationDeleted, ActionDelete, models.ConversationDeleted, true},
		{"unknown action", models.ConversationActive, LifecycleAction("explode"), models.ConversationActive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextState(tt.current, tt.action)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestConversationService(states *fakeStateRepo, purger *fakePurger) *ConversationService {
	log := logger.New(logger.Config{Level: "error"})
	directory := &DirectoryService{cache: newTestCache()}
	return NewConversationService(states, purger, directory, log)
}

func TestConversationService_ArchiveAndUnarchive(t *testing.T) {
	states := newFakeStateRepo()
	svc := newTestConversationService(states, &fakePurger{})
	ctx := context.Background()

	require.NoError(t, svc.Archive(ctx, "buyer@example.com"))

	state, err := svc.State(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ConversationArchived, state)

	// Repeating the action is a no-op, not an error
	require.NoError(t, svc.Archive(ctx, "buyer@example.com"))

	require.NoError(t, svc.Unarchive(ctx, "buyer@example.com"))
	state, err = svc.State(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ConversationActive, state)
}

func TestConversationService_DeleteCascadesToPurge(t *testing.T) {
	states := newFakeStateRepo()
	purger := &fakePurger{}
	svc := newTestConversationService(states, purger)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "buyer@example.com"))
	assert.Equal(t, []string{"buyer@example.com"}, purger.purged)

	state, err := svc.State(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ConversationDeleted, state)

	// Deleted is terminal
	err = svc.Archive(ctx, "buyer@example.com")
	assert.True(t, errors.IsNotFound(err))
}

func TestConversationService_RequiresConversationID(t *testing.T) {
	svc := newTestConversationService(newFakeStateRepo(), &fakePurger{})

	err := svc.Archive(context.Background(), "  ")
	assert.True(t, errors.IsValidation(err))
}
