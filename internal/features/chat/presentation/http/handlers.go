package http

import (
	"github.com/gin-gonic/gin"

	"synthetic-persona/backend/internal/features/chat/application"
)

// ChatHandler holds the chat service.
type ChatHandler struct {
	chatService application.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService application.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatHandler forwards a multipart chat submission to the AI agent. The
// upstream connection is closed before any response byte is written.
func (h *ChatHandler) ChatHandler(c *gin.Context) {
	outcome := h.chatService.Handle(c.Request.Context(), c.Writer, c.Request)
	resp := h.chatService.Respond(outcome)

	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.Data(resp.Status, resp.ContentType, resp.Body)
}
