package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riderapp/internal/service"
)

// ChatHandler handles HTTP requests for per-ride chat.
type ChatHandler struct {
	chatService service.ChatServiceInterface
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatServiceInterface) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Messages handles GET /v1/rides/:id/chat
func (h *ChatHandler) Messages(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{
		"messages": h.chatService.Messages(c.Param("id")),
	})
}

// SendMessageRequest is the HTTP request body for sending a chat message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage handles POST /v1/rides/:id/chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, msg)
}

// PresenceRequest is the HTTP request body for the chat presence toggle.
type PresenceRequest struct {
	Active bool `json:"active"`
}

// SetPresence handles POST /v1/rides/:id/chat/presence. The chat poll
// cadence follows the reported presence.
func (h *ChatHandler) SetPresence(c *gin.Context) {
	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	h.chatService.SetActive(c.Param("id"), req.Active)
	respondJSON(c, http.StatusOK, gin.H{"active": req.Active})
}
