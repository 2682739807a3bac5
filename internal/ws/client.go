package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024
)

// Client is one open chat session: a visitor widget, a logged-in
// seller panel, or the operator dashboard
type Client struct {
	ID             string
	ConversationID string
	Role           models.ParticipantRole
	Conn           *websocket.Conn
	Send           chan []byte
	Hub            *Hub

	mu      sync.Mutex
	focused bool
	unread  int
}

// enqueueMessage queues a chat event for this session and maintains
// the unread counter. Messages arriving while the session is not
// focused, from someone else, bump the counter. Returns false when the
// send buffer is full.
func (c *Client) enqueueMessage(message *models.Message, own bool) bool {
	payload, err := json.Marshal(Event{Type: "chat", Content: message})
	if err != nil {
		return true
	}

	select {
	case c.Send <- payload:
	default:
		return false
	}

	if own || message.SenderID == c.ID {
		return true
	}

	c.mu.Lock()
	focused := c.focused
	if !focused {
		c.unread++
	}
	unread := c.unread
	c.mu.Unlock()

	if !focused {
		c.Hub.metrics.UnreadNotifies.Inc()
		c.sendEvent("unread", map[string]int{"count": unread})
	}
	return true
}

// setFocus records whether the session's window is visible. Gaining
// focus clears the unread counter.
func (c *Client) setFocus(focused bool) {
	c.mu.Lock()
	c.focused = focused
	if focused {
		c.unread = 0
	}
	unread := c.unread
	c.mu.Unlock()

	if focused {
		c.sendEvent("unread", map[string]int{"count": unread})
	}
}

func (c *Client) sendEvent(eventType string, content interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Content: content})
	if err != nil {
		c.Hub.log.Error("failed to encode ws event", "type", eventType, "error", err)
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

func (c *Client) sendError(err error) {
	c.sendEvent("error", map[string]string{
		"code":    errors.GetErrorCode(err),
		"message": errors.GetErrorMessage(err),
	})
}

func (c *Client) ReadPump() {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Hub.presence.MarkOffline(ctx, c.ConversationID, c.ID, c.Role); err != nil {
			c.Hub.log.Warn("presence mark-offline failed", "client_id", c.ID, "error", err)
		}
		cancel()

		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		// The pong doubles as the presence heartbeat.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Hub.presence.Refresh(ctx, c.ConversationID, c.ID, c.Role); err != nil {
			c.Hub.log.Warn("presence refresh failed", "client_id", c.ID, "error", err)
		}
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("ws read error", "client_id", c.ID, "error", err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.Hub.log.Warn("malformed ws event", "client_id", c.ID, "error", err)
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Type {
	case "chat":
		c.handleChat(event)
	case "focus":
		c.handleFocus(event)
	case "ping":
		c.sendEvent("pong", nil)
	default:
		c.Hub.log.Warn("unknown ws event type", "type", event.Type, "client_id", c.ID)
	}
}

func (c *Client) handleChat(event Event) {
	var content struct {
		Body string `json:"body"`
	}
	raw, err := json.Marshal(event.Content)
	if err == nil {
		err = json.Unmarshal(raw, &content)
	}
	if err != nil {
		c.sendError(errors.NewValidationError("malformed chat payload"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message, err := c.Hub.messages.Append(ctx, c.ConversationID, c.ID, content.Body)
	if err != nil {
		c.sendError(err)
		return
	}

	c.Hub.deliverFrom(c, message)
}

func (c *Client) handleFocus(event Event) {
	var content struct {
		Focused bool `json:"focused"`
	}
	raw, err := json.Marshal(event.Content)
	if err == nil {
		err = json.Unmarshal(raw, &content)
	}
	if err != nil {
		c.sendError(errors.NewValidationError("malformed focus payload"))
		return
	}
	c.setFocus(content.Focused)
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain anything queued behind it, one frame each.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
