package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"sellerlift/backend/internal/models"
	apperrors "sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMessages struct {
	history []models.Message
	listErr error
}

func (s *stubMessages) Append(ctx context.Context, conversationID, senderID, body string) (*models.Message, error) {
	return &models.Message{ConversationID: conversationID, SenderID: senderID, Body: body}, nil
}

func (s *stubMessages) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.history, nil
}

type stubPresence struct{}

func (stubPresence) MarkOnline(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error {
	return nil
}

func (stubPresence) Refresh(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error {
	return nil
}

func (stubPresence) MarkOffline(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error {
	return nil
}

func (stubPresence) Status(ctx context.Context, conversationID string, role models.ParticipantRole) (models.PresenceStatus, *models.PresenceRecord, error) {
	return models.PresenceUnknown, nil, nil
}

func dialTestSession(t *testing.T, messages MessageService) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(messages, stubPresence{}, logger.New(logger.Config{Level: "error"}), testMetrics, HubOptions{
		OperatorID:  "support@sellerlift.app",
		WelcomeBody: "Hi! How can we help you grow your store?",
	})
	go hub.Run()

	engine := gin.New()
	engine.GET("/ws/chat", func(c *gin.Context) {
		ServeWs(hub, c)
	})
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/ws/chat?conversationId=" + url.QueryEscape("buyer@example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWireEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestServeWs_HistoryFailureSurfacesError(t *testing.T) {
	conn := dialTestSession(t, &stubMessages{
		listErr: apperrors.NewTransportError("failed to load chat history"),
	})

	event := readWireEvent(t, conn)
	require.Equal(t, "error", event.Type)
	content := event.Content.(map[string]interface{})
	assert.Equal(t, "TRANSPORT_ERROR", content["code"])

	// No welcome after a failed load: the conversation may well hold
	// real messages. The next frame is the presence push.
	next := readWireEvent(t, conn)
	assert.Equal(t, "presence", next.Type)
}

func TestServeWs_EmptyHistoryGreetsVisitor(t *testing.T) {
	conn := dialTestSession(t, &stubMessages{})

	history := readWireEvent(t, conn)
	require.Equal(t, "chat_history", history.Type)

	welcome := readWireEvent(t, conn)
	require.Equal(t, "chat", welcome.Type)
	content := welcome.Content.(map[string]interface{})
	assert.Equal(t, true, content["synthetic"])
	assert.Equal(t, "support@sellerlift.app", content["sender_id"])
}

func TestServeWs_ExistingHistorySkipsWelcome(t *testing.T) {
	conn := dialTestSession(t, &stubMessages{
		history: []models.Message{
			{ConversationID: "buyer@example.com", SenderID: "buyer@example.com", Body: "hi"},
		},
	})

	history := readWireEvent(t, conn)
	require.Equal(t, "chat_history", history.Type)

	next := readWireEvent(t, conn)
	assert.Equal(t, "presence", next.Type)
}
