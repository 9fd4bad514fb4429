package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"synthetic-persona/backend/internal/config"
	chatapp "synthetic-persona/backend/internal/features/chat/application"
	chatinfra "synthetic-persona/backend/internal/features/chat/infrastructure"
	chat_http "synthetic-persona/backend/internal/features/chat/presentation/http"
	personaapp "synthetic-persona/backend/internal/features/persona/application"
	personainfra "synthetic-persona/backend/internal/features/persona/infrastructure"
	persona_http "synthetic-persona/backend/internal/features/persona/presentation/http"
)

// Dependencies are the collaborators the edge router is built from.
type Dependencies struct {
	Config *config.EdgeConfig
	// AgentClient overrides the HTTP agent client built from Config.
	AgentClient chatinfra.AgentClient
	Personas    personainfra.PersonaRepository
	// Middleware is installed ahead of every route.
	Middleware []gin.HandlerFunc
}

// NewRouter builds the edge's HTTP routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(deps.Middleware...)

	client := deps.AgentClient
	if client == nil && deps.Config.AgentConfigured() {
		client = chatinfra.NewAgentClient(deps.Config.AgentBaseURL, nil)
	}
	personas := deps.Personas
	if personas == nil {
		personas = personainfra.NewUnavailableRepository()
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"agent_configured": deps.Config.AgentConfigured(),
		})
	})

	chatHandler := chat_http.NewChatHandler(chatapp.NewChatService(deps.Config, client))
	r.POST("/api/chat", chatHandler.ChatHandler)

	personaGroup := r.Group("/api/personas")
	{
		handler := persona_http.NewPersonaHandler(personaapp.NewPersonaService(personas))
		personaGroup.GET("", handler.ListPersonasHandler)
		personaGroup.GET("/:id", handler.GetPersonaHandler)
	}

	return r
}
