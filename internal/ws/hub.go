package ws

import (
	"context"
	"encoding/json"
	"sync"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/shared/observability"
)

// MessageService is the slice of the message store the chat sessions
// need
type MessageService interface {
	Append(ctx context.Context, conversationID, senderID, body string) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
}

// PresenceService maintains the per-participant presence lease
type PresenceService interface {
	MarkOnline(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error
	Refresh(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error
	MarkOffline(ctx context.Context, conversationID, participantID string, role models.ParticipantRole) error
	Status(ctx context.Context, conversationID string, role models.ParticipantRole) (models.PresenceStatus, *models.PresenceRecord, error)
}

// Event is the envelope for everything sent over a chat socket
type Event struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// delivery routes one stored message to the sessions of its conversation
type delivery struct {
	message *models.Message
	origin  *Client
}

// Hub tracks open chat sessions and routes messages between them.
// Sessions are grouped by conversation; a delivery reaches every
// session of that conversation, including the operator dashboard.
type Hub struct {
	clients        map[*Client]bool
	byConversation map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	deliveries chan delivery

	messages MessageService
	presence PresenceService

	log     *logger.Logger
	metrics *observability.Metrics

	operatorID  string
	welcomeBody string

	mu sync.Mutex
}

// HubOptions carries the chat tunables from application configuration
type HubOptions struct {
	OperatorID  string
	WelcomeBody string
}

func NewHub(messages MessageService, presence PresenceService, log *logger.Logger, metrics *observability.Metrics, opts HubOptions) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		byConversation: make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		deliveries:     make(chan delivery, 64),
		messages:       messages,
		presence:       presence,
		log:            log,
		metrics:        metrics,
		operatorID:     opts.OperatorID,
		welcomeBody:    opts.WelcomeBody,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.byConversation[client.ConversationID] == nil {
				h.byConversation[client.ConversationID] = make(map[*Client]bool)
			}
			h.byConversation[client.ConversationID][client] = true
			h.mu.Unlock()

			h.metrics.WSSessionsActive.Inc()
			h.log.Info("chat session registered",
				"client_id", client.ID,
				"conversation_id", client.ConversationID,
				"role", string(client.Role),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.dropFromConversation(client)
				close(client.Send)
				h.metrics.WSSessionsActive.Dec()
				h.log.Info("chat session unregistered", "client_id", client.ID)
			}
			h.mu.Unlock()

		case d := <-h.deliveries:
			h.mu.Lock()
			for client := range h.byConversation[d.message.ConversationID] {
				if !client.enqueueMessage(d.message, client == d.origin) {
					delete(h.clients, client)
					h.dropFromConversation(client)
					close(client.Send)
					h.metrics.WSSessionsActive.Dec()
					h.log.Warn("chat session dropped, send buffer full", "client_id", client.ID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// dropFromConversation removes the client from its conversation group;
// caller must hold the lock
func (h *Hub) dropFromConversation(client *Client) {
	group := h.byConversation[client.ConversationID]
	if group == nil {
		return
	}
	delete(group, client)
	if len(group) == 0 {
		delete(h.byConversation, client.ConversationID)
	}
}

// Deliver fans a stored message out to the open sessions of its
// conversation. Safe to call from the REST send path as well as from
// socket reads.
func (h *Hub) Deliver(message *models.Message) {
	h.deliveries <- delivery{message: message}
}

func (h *Hub) deliverFrom(origin *Client, message *models.Message) {
	h.deliveries <- delivery{message: message, origin: origin}
}

// SessionCount reports the number of open chat sessions
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastPresence pushes a presence change to every session of the
// conversation. Driven by the Redis change feed.
func (h *Hub) BroadcastPresence(conversationID, participantID, status string) {
	payload, err := json.Marshal(Event{
		Type: "presence",
		Content: map[string]string{
			"participant_id": participantID,
			"status":         status,
		},
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.byConversation[conversationID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}
