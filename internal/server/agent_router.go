package server

import (
	"github.com/gin-gonic/gin"

	agentapp "synthetic-persona/backend/internal/features/agent/application"
	agent_http "synthetic-persona/backend/internal/features/agent/presentation/http"
)

// NewAgentRouter builds the reference persona agent's HTTP routes.
func NewAgentRouter(agentService agentapp.PersonaAgentService, maxBodyBytes int64, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)

	handler := agent_http.NewAgentHandler(agentService, maxBodyBytes)
	r.GET("/", handler.RootHandler)
	r.GET("/health", handler.HealthHandler)
	r.POST("/chat", handler.ChatHandler)
	r.POST("/chat/multimodal", handler.MultimodalChatHandler)

	r.GET("/config", agent_http.NewAgentConfigHandler(agentService).GetAgentConfigHandler)

	return r
}
