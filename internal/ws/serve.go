package ws

import (
	"fmt"
	"net/http"
	"time"

	"sellerlift/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin checks happen at the CORS layer
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// ServeWs upgrades a chat session. The conversation is keyed by the
// participant's email; the operator dashboard connects with
// role=operator (behind admin auth) to join any conversation.
func ServeWs(hub *Hub, c *gin.Context) {
	conversationID := c.Query("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
		return
	}

	clientID := c.Query("clientId")
	if clientID == "" {
		clientID = conversationID
	}

	role := models.RoleParticipant
	if c.Query("role") == string(models.RoleOperator) {
		role = models.RoleOperator
		clientID = hub.operatorID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn("ws upgrade failed", "conversation_id", conversationID, "error", err)
		return
	}
	conn.EnableWriteCompression(true)

	client := &Client{
		ID:             clientID,
		ConversationID: conversationID,
		Role:           role,
		Conn:           conn,
		Send:           make(chan []byte, 256),
		Hub:            hub,
		focused:        true,
	}

	ctx := c.Request.Context()

	history, histErr := hub.messages.ListByConversation(ctx, conversationID)
	if histErr != nil {
		hub.log.Error("failed to load chat history",
			"conversation_id", conversationID,
			"error", histErr,
		)
	}

	if err := hub.presence.MarkOnline(ctx, conversationID, clientID, role); err != nil {
		hub.log.Warn("presence mark-online failed",
			"conversation_id", conversationID,
			"error", err,
		)
	}

	hub.register <- client

	if histErr != nil {
		// The client shows an error state instead of an empty log. No
		// welcome either: an empty history here proves nothing, the
		// conversation may well hold real messages.
		client.sendError(histErr)
	} else {
		client.sendEvent("chat_history", map[string]interface{}{
			"messages": history,
		})

		// First contact: greet the visitor with a synthetic welcome. It
		// is never stored, so it vanishes once a real message exists.
		if len(history) == 0 && role != models.RoleOperator && hub.welcomeBody != "" {
			client.sendEvent("chat", models.SyntheticMessage{
				ID:             fmt.Sprintf("welcome-%d", time.Now().UnixNano()),
				ConversationID: conversationID,
				SenderID:       hub.operatorID,
				Body:           hub.welcomeBody,
				FromOperator:   true,
				Synthetic:      true,
				CreatedAt:      time.Now().UTC(),
			})
		}
	}

	// Tell the session whether the other side is currently there.
	otherRole := models.RoleOperator
	if role == models.RoleOperator {
		otherRole = models.RoleParticipant
	}
	if status, record, err := hub.presence.Status(ctx, conversationID, otherRole); err == nil {
		participantID := ""
		if record != nil {
			participantID = record.ParticipantID
		}
		client.sendEvent("presence", map[string]string{
			"participant_id": participantID,
			"status":         string(status),
		})
	}

	go client.WritePump()
	go client.ReadPump()
}
