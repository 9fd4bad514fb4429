package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"synthetic-persona/backend/internal/features/agent/application"
)

// AgentConfigHandler exposes the effective agent configuration.
type AgentConfigHandler struct {
	agentService application.PersonaAgentService
}

// NewAgentConfigHandler creates a new AgentConfigHandler.
func NewAgentConfigHandler(agentService application.PersonaAgentService) *AgentConfigHandler {
	return &AgentConfigHandler{agentService: agentService}
}

// GetAgentConfigHandler handles fetching the agent configuration. It is
// read-only; the file is edited out of band.
func (h *AgentConfigHandler) GetAgentConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.agentService.Config())
}
