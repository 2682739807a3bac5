package service

import (
	"context"
	"testing"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/cache"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/shared/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One registry-backed metrics instance per test binary
var testMetrics = observability.NewMetrics()

func newTestCache() *cache.Cache {
	return cache.NewCacheWith(time.Minute, 0, 100)
}

func at(minutesAgo int) time.Time {
	return time.Now().UTC().Add(-time.Duration(minutesAgo) * time.Minute)
}

func TestBuildDirectory_PartitionsAndSorts(t *testing.T) {
	messages := []models.Message{
		{ConversationID: "old@example.com", Body: "hello", CreatedAt: at(60)},
		{ConversationID: "fresh@example.com", Body: "hi there", CreatedAt: at(1)},
		{ConversationID: "fresh@example.com", Body: "first", CreatedAt: at(5)},
		{ConversationID: "stored@example.com", Body: "archived talk", CreatedAt: at(10)},
		{ConversationID: "gone@example.com", Body: "purged later", CreatedAt: at(2)},
	}
	states := []models.ConversationState{
		{ConversationID: "stored@example.com", Archived: true},
		{ConversationID: "gone@example.com", Deleted: true},
	}
	accounts := []models.RegisteredAccount{
		{Email: "fresh@example.com", CreatedAt: at(120)},
	}

	directory := BuildDirectory(messages, states, accounts)

	require.Len(t, directory.Active, 2)
	require.Len(t, directory.Archived, 1)

	// Newest activity first
	assert.Equal(t, "fresh@example.com", directory.Active[0].ConversationID)
	assert.Equal(t, "old@example.com", directory.Active[1].ConversationID)

	// Last message body and registered flag carried through
	assert.Equal(t, "hi there", directory.Active[0].LastBody)
	assert.True(t, directory.Active[0].Registered)
	assert.False(t, directory.Active[1].Registered)

	assert.Equal(t, "stored@example.com", directory.Archived[0].ConversationID)
	assert.True(t, directory.Archived[0].Archived)

	// Deleted conversations never appear
	for _, entry := range append(directory.Active, directory.Archived...) {
		assert.NotEqual(t, "gone@example.com", entry.ConversationID)
	}
}

func TestBuildDirectory_Empty(t *testing.T) {
	directory := BuildDirectory(nil, nil, nil)
	assert.Empty(t, directory.Active)
	assert.Empty(t, directory.Archived)
}

func TestBuildDirectory_UnionsSilentRegisteredAccounts(t *testing.T) {
	signedUp := at(30)
	messages := []models.Message{
		{ConversationID: "chatty@example.com", Body: "hello", CreatedAt: at(5)},
	}
	accounts := []models.RegisteredAccount{
		{Email: "chatty@example.com", CreatedAt: at(200)},
		{Email: "silent@example.com", CreatedAt: signedUp},
	}

	directory := BuildDirectory(messages, nil, accounts)

	require.Len(t, directory.Active, 2)

	// The account with messages sorts by message time, the silent one
	// by its signup time
	assert.Equal(t, "chatty@example.com", directory.Active[0].ConversationID)
	assert.Equal(t, "silent@example.com", directory.Active[1].ConversationID)

	silent := directory.Active[1]
	assert.True(t, silent.Registered)
	assert.Empty(t, silent.LastBody)
	assert.True(t, silent.LastActivityAt.Equal(signedUp))
}

func TestBuildDirectory_SilentAccountStillHonorsLifecycle(t *testing.T) {
	accounts := []models.RegisteredAccount{
		{Email: "shelved@example.com", CreatedAt: at(10)},
		{Email: "erased@example.com", CreatedAt: at(10)},
	}
	states := []models.ConversationState{
		{ConversationID: "shelved@example.com", Archived: true},
		{ConversationID: "erased@example.com", Deleted: true},
	}

	directory := BuildDirectory(nil, states, accounts)

	require.Len(t, directory.Archived, 1)
	assert.Equal(t, "shelved@example.com", directory.Archived[0].ConversationID)
	assert.Empty(t, directory.Active)
}

type fakeAccounts struct {
	accounts []models.RegisteredAccount
}

func (f *fakeAccounts) RegisteredAccounts(ctx context.Context) ([]models.RegisteredAccount, error) {
	return f.accounts, nil
}

func TestDirectoryService_RefreshAndCache(t *testing.T) {
	messages := newFakeMessageRepo()
	messages.add(&models.Message{ConversationID: "a@example.com", Body: "one", CreatedAt: at(3)})
	states := newFakeStateRepo()

	svc := NewDirectoryService(
		messages,
		states,
		&fakeAccounts{accounts: []models.RegisteredAccount{{Email: "a@example.com", CreatedAt: at(240)}}},
		newTestCache(),
		logger.New(logger.Config{Level: "error"}),
		testMetrics,
		100,
		time.Minute,
	)

	directory, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, directory.Active, 1)
	assert.True(t, directory.Active[0].Registered)

	// A second read without invalidation serves the snapshot even when
	// the store changed underneath
	messages.add(&models.Message{ConversationID: "b@example.com", Body: "two", CreatedAt: at(1)})
	directory, err = svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Len(t, directory.Active, 1)

	// Invalidation forces a rebuild
	svc.Invalidate()
	directory, err = svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Len(t, directory.Active, 2)
}

func TestDirectoryService_RefreshListsAccountsWithoutMessages(t *testing.T) {
	messages := newFakeMessageRepo()
	states := newFakeStateRepo()
	signedUp := at(90)

	svc := NewDirectoryService(
		messages,
		states,
		&fakeAccounts{accounts: []models.RegisteredAccount{{Email: "silent@example.com", CreatedAt: signedUp}}},
		newTestCache(),
		logger.New(logger.Config{Level: "error"}),
		testMetrics,
		100,
		time.Minute,
	)

	directory, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, directory.Active, 1)

	entry := directory.Active[0]
	assert.Equal(t, "silent@example.com", entry.ConversationID)
	assert.True(t, entry.Registered)
	assert.True(t, entry.LastActivityAt.Equal(signedUp))
}
