package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageRepo struct {
	messages []models.Message
	nextID   uint
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

func (r *fakeMessageRepo) add(message *models.Message) {
	message.ID = r.nextID
	r.nextID++
	r.messages = append(r.messages, *message)
}

func (r *fakeMessageRepo) Create(message *models.Message) error {
	r.add(message)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(conversationID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeMessageRepo) ListRecent(limit int) ([]models.Message, error) {
	out := make([]models.Message, len(r.messages))
	copy(out, r.messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) CountByConversation(conversationID string) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) Purge(conversationID string) error {
	var kept []models.Message
	for _, m := range r.messages {
		if m.ConversationID != conversationID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type fakeFeed struct {
	published map[string][]string
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{published: make(map[string][]string)}
}

func (f *fakeFeed) Publish(ctx context.Context, channel string, payload interface{}) error {
	f.published[channel] = append(f.published[channel], payload.(string))
	return nil
}

func newTestMessageService(repo *fakeMessageRepo, feed *fakeFeed) *MessageService {
	return NewMessageService(repo, feed, logger.New(logger.Config{Level: "error"}), testMetrics, MessageServiceOptions{
		OperatorID:    "support@sellerlift.app",
		MaxBodyLength: 100,
		RecentWindow:  50,
	})
}

func TestMessageService_AppendRejectsEmptyBody(t *testing.T) {
	repo := newFakeMessageRepo()
	feed := newFakeFeed()
	svc := newTestMessageService(repo, feed)

	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := svc.Append(context.Background(), "buyer@example.com", "buyer@example.com", body)
		assert.True(t, errors.IsValidation(err), "body %q should be rejected", body)
	}

	// A rejected send leaves no trace: nothing stored, nothing published
	assert.Empty(t, repo.messages)
	assert.Empty(t, feed.published)
}

func TestMessageService_AppendRejectsOversizedBody(t *testing.T) {
	svc := newTestMessageService(newFakeMessageRepo(), newFakeFeed())

	_, err := svc.Append(context.Background(), "buyer@example.com", "buyer@example.com", strings.Repeat("x", 101))
	assert.True(t, errors.IsValidation(err))
}

func TestMessageService_AppendClassifiesOperator(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := newTestMessageService(repo, newFakeFeed())
	ctx := context.Background()

	fromBuyer, err := svc.Append(ctx, "buyer@example.com", "buyer@example.com", "hello")
	require.NoError(t, err)
	assert.False(t, fromBuyer.FromOperator)

	fromOperator, err := svc.Append(ctx, "buyer@example.com", "support@sellerlift.app", "hi, how can I help?")
	require.NoError(t, err)
	assert.True(t, fromOperator.FromOperator)
}

func TestMessageService_AppendPublishesChangeEvent(t *testing.T) {
	feed := newFakeFeed()
	svc := newTestMessageService(newFakeMessageRepo(), feed)

	message, err := svc.Append(context.Background(), "buyer@example.com", "buyer@example.com", "hello")
	require.NoError(t, err)

	convChannel := ConversationChannel("buyer@example.com")
	require.Len(t, feed.published[convChannel], 1)
	require.Len(t, feed.published[GlobalChannel], 1)

	event, err := DecodeFeedMessage(feed.published[convChannel][0])
	require.NoError(t, err)
	assert.Equal(t, EventMessageAppended, event.Kind)
	assert.Equal(t, "buyer@example.com", event.ConversationID)
	assert.Equal(t, message.ID, event.MessageID)
}

func TestMessageService_ListByConversationOrdersOldestFirst(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := newTestMessageService(repo, newFakeFeed())

	now := time.Now().UTC()
	repo.add(&models.Message{ConversationID: "c", Body: "second", CreatedAt: now})
	repo.add(&models.Message{ConversationID: "c", Body: "first", CreatedAt: now.Add(-time.Minute)})
	repo.add(&models.Message{ConversationID: "other", Body: "noise", CreatedAt: now})

	messages, err := svc.ListByConversation(context.Background(), "c")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
}

func TestMessageService_PurgeRemovesLogAndAnnounces(t *testing.T) {
	repo := newFakeMessageRepo()
	feed := newFakeFeed()
	svc := newTestMessageService(repo, feed)
	ctx := context.Background()

	_, err := svc.Append(ctx, "buyer@example.com", "buyer@example.com", "hello")
	require.NoError(t, err)
	_, err = svc.Append(ctx, "keep@example.com", "keep@example.com", "stay")
	require.NoError(t, err)

	require.NoError(t, svc.Purge(ctx, "buyer@example.com"))

	remaining, err := svc.ListByConversation(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := svc.ListByConversation(ctx, "keep@example.com")
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	events := feed.published[ConversationChannel("buyer@example.com")]
	last, err := DecodeFeedMessage(events[len(events)-1])
	require.NoError(t, err)
	assert.Equal(t, EventConversationPurged, last.Kind)
}
