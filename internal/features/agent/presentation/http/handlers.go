package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"synthetic-persona/backend/internal/features/agent/application"
	"synthetic-persona/backend/internal/features/agent/domain"
	chatapp "synthetic-persona/backend/internal/features/chat/application"
	chatdomain "synthetic-persona/backend/internal/features/chat/domain"
)

const (
	agentStatus  = "Synthetic Persona Agent is running"
	agentVersion = "1.0.0"

	msgModelNotConfigured = "Model not configured. Set OPENAI_API_KEY environment variable."
)

// AgentHandler holds the persona agent service.
type AgentHandler struct {
	agentService application.PersonaAgentService
	maxBodyBytes int64
}

// NewAgentHandler creates a new AgentHandler. maxBodyBytes bounds multimodal
// uploads.
func NewAgentHandler(agentService application.PersonaAgentService, maxBodyBytes int64) *AgentHandler {
	return &AgentHandler{agentService: agentService, maxBodyBytes: maxBodyBytes}
}

// RootHandler reports that the agent is up.
func (h *AgentHandler) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     agentStatus,
		"version":    agentVersion,
		"multimodal": true,
	})
}

// HealthHandler reports whether a model is available.
func (h *AgentHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"model":            h.agentService.Config().ModelParams.Model,
		"model_configured": h.agentService.ModelConfigured(),
	})
}

// ChatHandler answers a text-only prompt sent as JSON.
func (h *AgentHandler) ChatHandler(c *gin.Context) {
	var req domain.PersonaPrompt
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	h.respond(c, req, nil)
}

// MultimodalChatHandler answers a prompt sent as multipart/form-data, with an
// optional image and video.
func (h *AgentHandler) MultimodalChatHandler(c *gin.Context) {
	sub, ierr := chatapp.ParseSubmission(c.Request, h.maxBodyBytes)
	if ierr != nil {
		status := http.StatusUnprocessableEntity
		if ierr.Kind == chatdomain.IntakeTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"detail": ierr.Reason})
		return
	}

	var media []domain.Media
	for _, a := range []*chatdomain.Attachment{sub.Image, sub.Video} {
		if a != nil {
			media = append(media, domain.Media{Filename: a.Filename, ContentType: a.ContentType, Data: a.Data})
		}
	}

	h.respond(c, domain.PersonaPrompt{
		UserPrompt:      sub.UserPrompt,
		BrandContext:    sub.BrandContext,
		AudienceSummary: sub.AudienceSummary,
	}, media)
}

func (h *AgentHandler) respond(c *gin.Context, prompt domain.PersonaPrompt, media []domain.Media) {
	resp, err := h.agentService.Respond(c.Request.Context(), prompt, media)
	switch {
	case errors.Is(err, domain.ErrModelNotConfigured):
		log.Error("chat request received but no model is configured")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgModelNotConfigured})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Generation failed: " + err.Error()})
	default:
		c.JSON(http.StatusOK, resp)
	}
}
