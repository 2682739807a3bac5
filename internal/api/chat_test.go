package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/internal/ws"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/jwt"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/pkg/middleware"
	"sellerlift/backend/shared/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One registry-backed metrics instance per test binary
var testMetrics = observability.NewMetrics()

const testOperatorID = "support@sellerlift.app"

type memoryMessageRepo struct {
	stored []models.Message
	nextID uint
}

func (r *memoryMessageRepo) Create(message *models.Message) error {
	r.nextID++
	message.ID = r.nextID
	r.stored = append(r.stored, *message)
	return nil
}

func (r *memoryMessageRepo) ListByConversation(conversationID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.stored {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMessageRepo) ListRecent(limit int) ([]models.Message, error) {
	return r.stored, nil
}

func (r *memoryMessageRepo) CountByConversation(conversationID string) (int64, error) {
	messages, _ := r.ListByConversation(conversationID)
	return int64(len(messages)), nil
}

func (r *memoryMessageRepo) Purge(conversationID string) error {
	var kept []models.Message
	for _, m := range r.stored {
		if m.ConversationID != conversationID {
			kept = append(kept, m)
		}
	}
	r.stored = kept
	return nil
}

type noopFeed struct{}

func (noopFeed) Publish(ctx context.Context, channel string, payload interface{}) error {
	return nil
}

func newSendTestServer(t *testing.T) (*gin.Engine, *memoryMessageRepo, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.Config{Level: "error"})
	repo := &memoryMessageRepo{}
	messages := service.NewMessageService(repo, noopFeed{}, log, testMetrics, service.MessageServiceOptions{
		OperatorID:    testOperatorID,
		MaxBodyLength: 2000,
		RecentWindow:  100,
	})

	hub := ws.NewHub(nil, nil, log, testMetrics, ws.HubOptions{OperatorID: testOperatorID})
	go hub.Run()

	jwtService := jwt.NewService("test-secret", time.Hour)
	handler := NewChatHandler(messages, nil, nil, nil, hub, testOperatorID)

	engine := gin.New()
	engine.Use(errors.ErrorHandler())
	engine.Use(middleware.OptionalJWTAuthMiddleware(jwtService, log))
	engine.POST("/chat/messages", handler.SendMessage)

	return engine, repo, jwtService
}

func postMessage(t *testing.T, engine *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	body := []byte(`{"conversation_id":"buyer@example.com","body":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSendMessage_OperatorTokenAuthorsAsOperator(t *testing.T) {
	engine, repo, jwtService := newSendTestServer(t)

	token, err := jwtService.GenerateToken(1, "admin@sellerlift.app", jwt.RoleAdmin)
	require.NoError(t, err)

	w := postMessage(t, engine, token)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, repo.stored, 1)
	assert.Equal(t, testOperatorID, repo.stored[0].SenderID)
	assert.True(t, repo.stored[0].FromOperator)
}

func TestSendMessage_AnonymousAuthorsAsVisitor(t *testing.T) {
	engine, repo, _ := newSendTestServer(t)

	w := postMessage(t, engine, "")
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, repo.stored, 1)
	assert.Equal(t, "buyer@example.com", repo.stored[0].SenderID)
	assert.False(t, repo.stored[0].FromOperator)
}

func TestSendMessage_SellerTokenAuthorsAsAccount(t *testing.T) {
	engine, repo, jwtService := newSendTestServer(t)

	token, err := jwtService.GenerateToken(7, "seller@example.com", jwt.RoleUser)
	require.NoError(t, err)

	w := postMessage(t, engine, token)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, repo.stored, 1)
	assert.Equal(t, "seller@example.com", repo.stored[0].SenderID)
	assert.False(t, repo.stored[0].FromOperator)
}

func TestSendMessage_InvalidTokenRejected(t *testing.T) {
	engine, repo, _ := newSendTestServer(t)

	w := postMessage(t, engine, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, repo.stored)
}
