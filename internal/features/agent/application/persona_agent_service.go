package application

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"synthetic-persona/backend/internal/features/agent/domain"
	"synthetic-persona/backend/internal/features/agent/infrastructure"
	"synthetic-persona/backend/internal/metrics"
)

// PersonaAgentService answers prompts in the voice of a consumer persona.
type PersonaAgentService interface {
	Respond(ctx context.Context, prompt domain.PersonaPrompt, media []domain.Media) (*domain.ChatResponse, error)
	ModelConfigured() bool
	Config() domain.AgentConfig
}

// personaAgentService is the implementation of PersonaAgentService.
type personaAgentService struct {
	client   infrastructure.AIClient
	cfg      domain.AgentConfig
	template *template.Template
}

// NewPersonaAgentService creates a new instance of personaAgentService. client
// may be nil, in which case every Respond fails with ErrModelNotConfigured.
func NewPersonaAgentService(client infrastructure.AIClient, cfg domain.AgentConfig) (PersonaAgentService, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(cfg.PromptTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing prompt template")
	}
	return &personaAgentService{client: client, cfg: cfg, template: tmpl}, nil
}

func (s *personaAgentService) ModelConfigured() bool {
	return s.client != nil
}

func (s *personaAgentService) Config() domain.AgentConfig {
	return s.cfg
}

// BuildPrompt renders the persona prompt template.
func (s *personaAgentService) BuildPrompt(prompt domain.PersonaPrompt) (string, error) {
	var sb strings.Builder
	if err := s.template.Execute(&sb, prompt); err != nil {
		return "", errors.Wrap(err, "rendering prompt template")
	}
	return sb.String(), nil
}

func (s *personaAgentService) Respond(ctx context.Context, prompt domain.PersonaPrompt, media []domain.Media) (*domain.ChatResponse, error) {
	if s.client == nil {
		return nil, domain.ErrModelNotConfigured
	}

	text, err := s.BuildPrompt(prompt)
	if err != nil {
		return nil, err
	}

	req := infrastructure.GenerationRequest{Prompt: text, Params: s.cfg.ModelParams}
	for _, m := range media {
		if strings.HasPrefix(m.ContentType, "image/") {
			req.Images = append(req.Images, m)
			continue
		}
		// Chat completions cannot ingest video; let the persona know it exists.
		req.Notes = append(req.Notes, describeMedia(m))
	}

	reply, err := s.client.Generate(ctx, req)
	metrics.ObserveAgentGeneration(err)
	if err != nil {
		log.WithError(err).Error("persona generation failed")
		return nil, err
	}
	return &domain.ChatResponse{AgentResponse: reply}, nil
}

func describeMedia(m domain.Media) string {
	return fmt.Sprintf("[The user also attached %q (%s, %d bytes), which cannot be shown to you. "+
		"Respond to the question without pretending to have seen it.]", m.Filename, m.ContentType, len(m.Data))
}
