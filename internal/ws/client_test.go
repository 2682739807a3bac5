package ws

import (
	"encoding/json"
	"testing"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/shared/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetrics = observability.NewMetrics()

func newTestClient(focused bool) *Client {
	hub := NewHub(nil, nil, logger.New(logger.Config{Level: "error"}), testMetrics, HubOptions{
		OperatorID:  "support@sellerlift.app",
		WelcomeBody: "Hi! How can we help you grow your store?",
	})
	return &Client{
		ID:             "buyer@example.com",
		ConversationID: "buyer@example.com",
		Role:           models.RoleParticipant,
		Send:           make(chan []byte, 16),
		Hub:            hub,
		focused:        focused,
	}
}

func drainEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case payload := <-c.Send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event queued")
		return Event{}
	}
}

func TestEnqueueMessage_UnfocusedSessionCountsUnread(t *testing.T) {
	client := newTestClient(false)
	message := &models.Message{
		ConversationID: "buyer@example.com",
		SenderID:       "support@sellerlift.app",
		Body:           "hello",
		FromOperator:   true,
	}

	ok := client.enqueueMessage(message, false)
	require.True(t, ok)

	chat := drainEvent(t, client)
	assert.Equal(t, "chat", chat.Type)

	unread := drainEvent(t, client)
	assert.Equal(t, "unread", unread.Type)
	content := unread.Content.(map[string]interface{})
	assert.Equal(t, float64(1), content["count"])
}

func TestEnqueueMessage_FocusedSessionStaysAtZero(t *testing.T) {
	client := newTestClient(true)
	message := &models.Message{
		ConversationID: "buyer@example.com",
		SenderID:       "support@sellerlift.app",
		Body:           "hello",
	}

	require.True(t, client.enqueueMessage(message, false))

	chat := drainEvent(t, client)
	assert.Equal(t, "chat", chat.Type)

	// No unread event follows for a focused session
	select {
	case payload := <-client.Send:
		t.Fatalf("unexpected extra event: %s", payload)
	default:
	}
}

func TestEnqueueMessage_OwnMessageNeverCountsUnread(t *testing.T) {
	client := newTestClient(false)
	message := &models.Message{
		ConversationID: "buyer@example.com",
		SenderID:       "buyer@example.com",
		Body:           "my own words",
	}

	require.True(t, client.enqueueMessage(message, true))

	chat := drainEvent(t, client)
	assert.Equal(t, "chat", chat.Type)

	select {
	case payload := <-client.Send:
		t.Fatalf("unexpected extra event: %s", payload)
	default:
	}
}

func TestSetFocus_ClearsUnreadCounter(t *testing.T) {
	client := newTestClient(false)
	message := &models.Message{
		ConversationID: "buyer@example.com",
		SenderID:       "support@sellerlift.app",
		Body:           "ping",
	}

	require.True(t, client.enqueueMessage(message, false))
	require.True(t, client.enqueueMessage(message, false))

	// chat, unread(1), chat, unread(2)
	drainEvent(t, client)
	drainEvent(t, client)
	drainEvent(t, client)
	second := drainEvent(t, client)
	assert.Equal(t, float64(2), second.Content.(map[string]interface{})["count"])

	client.setFocus(true)

	reset := drainEvent(t, client)
	assert.Equal(t, "unread", reset.Type)
	assert.Equal(t, float64(0), reset.Content.(map[string]interface{})["count"])
}

func TestEnqueueMessage_FullBufferReportsDrop(t *testing.T) {
	client := newTestClient(true)
	client.Send = make(chan []byte) // unbuffered, nobody reading

	message := &models.Message{
		ConversationID: "buyer@example.com",
		SenderID:       "support@sellerlift.app",
		Body:           "hello",
	}
	assert.False(t, client.enqueueMessage(message, false))
}
