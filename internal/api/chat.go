package api

import (
	"net/http"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/internal/ws"
	"sellerlift/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the REST side of the messaging feature: history
// and send for the widgets, directory and lifecycle for the operator
type ChatHandler struct {
	messages      *service.MessageService
	presence      *service.PresenceService
	directory     *service.DirectoryService
	conversations *service.ConversationService
	hub           *ws.Hub
	operatorID    string
}

func NewChatHandler(
	messages *service.MessageService,
	presence *service.PresenceService,
	directory *service.DirectoryService,
	conversations *service.ConversationService,
	hub *ws.Hub,
	operatorID string,
) *ChatHandler {
	return &ChatHandler{
		messages:      messages,
		presence:      presence,
		directory:     directory,
		conversations: conversations,
		hub:           hub,
		operatorID:    operatorID,
	}
}

// SendMessage appends a message over REST. The widgets use the socket;
// this path serves the operator panel and clients without a socket.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	senderID := req.ConversationID
	if email := c.GetString("userEmail"); email != "" {
		senderID = email
	}
	if role := c.GetString("userRole"); role == "admin" {
		senderID = h.operatorID
	}

	message, err := h.messages.Append(c.Request.Context(), req.ConversationID, senderID, req.Body)
	if err != nil {
		c.Error(err)
		return
	}

	h.hub.Deliver(message)
	c.JSON(http.StatusCreated, message)
}

// GetMessages returns the full log of one conversation, oldest first
func (h *ChatHandler) GetMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")

	state, err := h.conversations.State(c.Request.Context(), conversationID)
	if err != nil {
		c.Error(err)
		return
	}
	if state == models.ConversationDeleted {
		c.Error(errors.NewNotFoundError("CONVERSATION_DELETED", "conversation has been deleted"))
		return
	}

	messages, err := h.messages.ListByConversation(c.Request.Context(), conversationID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetDirectory returns the operator's partitioned conversation listing
func (h *ChatHandler) GetDirectory(c *gin.Context) {
	refresh := c.Query("refresh") == "true"

	var (
		directory models.Directory
		err       error
	)
	if refresh {
		directory, err = h.directory.Refresh(c.Request.Context())
	} else {
		directory, err = h.directory.Directory(c.Request.Context())
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, directory)
}

// Archive moves a conversation to the archived partition
func (h *ChatHandler) Archive(c *gin.Context) {
	if err := h.conversations.Archive(c.Request.Context(), c.Param("conversationId")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

// Unarchive restores a conversation to the active partition
func (h *ChatHandler) Unarchive(c *gin.Context) {
	if err := h.conversations.Unarchive(c.Request.Context(), c.Param("conversationId")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// Delete tombstones a conversation and purges its message log
func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.conversations.Delete(c.Request.Context(), c.Param("conversationId")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetPresence reports whether the other side of a conversation is
// there. The widget asks about the operator; the dashboard asks about
// the participant.
func (h *ChatHandler) GetPresence(c *gin.Context) {
	conversationID := c.Param("conversationId")

	role := models.RoleOperator
	if c.Query("role") == string(models.RoleParticipant) {
		role = models.RoleParticipant
	}

	status, record, err := h.presence.Status(c.Request.Context(), conversationID, role)
	if err != nil {
		c.Error(err)
		return
	}

	participantID := ""
	if record != nil {
		participantID = record.ParticipantID
	}
	c.JSON(http.StatusOK, gin.H{
		"participant_id": participantID,
		"status":         status,
	})
}

// Heartbeat refreshes the caller's presence lease over REST, for
// widget states that keep polling instead of holding a socket open
func (h *ChatHandler) Heartbeat(c *gin.Context) {
	conversationID := c.Param("conversationId")

	participantID := conversationID
	role := models.RoleParticipant
	if userRole := c.GetString("userRole"); userRole == "admin" {
		participantID = h.operatorID
		role = models.RoleOperator
	}

	if err := h.presence.Refresh(c.Request.Context(), conversationID, participantID, role); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
