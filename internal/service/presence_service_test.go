package service

import (
	"context"
	"testing"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresenceStore struct {
	values map[string]string
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{values: make(map[string]string)}
}

func (s *fakePresenceStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	return nil
}

func (s *fakePresenceStore) GetOptional(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakePresenceStore) Del(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *fakePresenceStore) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	_, ok := s.values[key]
	return ok, nil
}

// expire simulates the lease lapsing on the Redis side
func (s *fakePresenceStore) expire(key string) {
	delete(s.values, key)
}

func newTestPresenceService(store *fakePresenceStore, feed *fakeFeed) *PresenceService {
	return NewPresenceService(store, feed, logger.New(logger.Config{Level: "error"}), 45*time.Second)
}

func TestPresenceService_MarkOnlineAndStatus(t *testing.T) {
	store := newFakePresenceStore()
	svc := newTestPresenceService(store, newFakeFeed())
	ctx := context.Background()

	require.NoError(t, svc.MarkOnline(ctx, "buyer@example.com", "buyer@example.com", models.RoleParticipant))

	status, record, err := svc.Status(ctx, "buyer@example.com", models.RoleParticipant)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOnline, status)
	require.NotNil(t, record)
	assert.Equal(t, "buyer@example.com", record.ParticipantID)
}

func TestPresenceService_MissingLeaseReadsUnknown(t *testing.T) {
	svc := newTestPresenceService(newFakePresenceStore(), newFakeFeed())

	status, record, err := svc.Status(context.Background(), "nobody@example.com", models.RoleOperator)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceUnknown, status)
	assert.Nil(t, record)
}

func TestPresenceService_RefreshRevivesLapsedLease(t *testing.T) {
	store := newFakePresenceStore()
	svc := newTestPresenceService(store, newFakeFeed())
	ctx := context.Background()

	require.NoError(t, svc.MarkOnline(ctx, "buyer@example.com", "buyer@example.com", models.RoleParticipant))

	// The lease lapses while the session is still alive; a refresh
	// re-marks rather than failing
	store.expire(presenceKey("buyer@example.com", models.RoleParticipant))
	require.NoError(t, svc.Refresh(ctx, "buyer@example.com", "buyer@example.com", models.RoleParticipant))

	status, _, err := svc.Status(ctx, "buyer@example.com", models.RoleParticipant)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOnline, status)
}

func TestPresenceService_MarkOfflineDropsLease(t *testing.T) {
	store := newFakePresenceStore()
	feed := newFakeFeed()
	svc := newTestPresenceService(store, feed)
	ctx := context.Background()

	require.NoError(t, svc.MarkOnline(ctx, "buyer@example.com", "buyer@example.com", models.RoleParticipant))
	require.NoError(t, svc.MarkOffline(ctx, "buyer@example.com", "buyer@example.com", models.RoleParticipant))

	status, _, err := svc.Status(ctx, "buyer@example.com", models.RoleParticipant)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceUnknown, status)

	// Both transitions were announced on the presence channel
	events := feed.published[PresenceChannel("buyer@example.com")]
	require.Len(t, events, 2)

	first, err := DecodeFeedMessage(events[0])
	require.NoError(t, err)
	assert.Equal(t, string(models.PresenceOnline), first.Status)

	second, err := DecodeFeedMessage(events[1])
	require.NoError(t, err)
	assert.Equal(t, string(models.PresenceOffline), second.Status)
}
