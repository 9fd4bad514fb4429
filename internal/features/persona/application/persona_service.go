package application

import (
	"context"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"synthetic-persona/backend/internal/features/persona/domain"
	"synthetic-persona/backend/internal/features/persona/infrastructure"
	"synthetic-persona/backend/internal/metrics"
)

// PersonaService is the read path over the persona directory. It performs no
// writes and keeps no state between calls.
type PersonaService interface {
	// ListPersonas returns personas ordered by name, case-insensitively, then by
	// id. On failure the list is empty, never nil, and err is set.
	ListPersonas(ctx context.Context) ([]domain.Persona, error)
	GetPersona(ctx context.Context, id int64) (*domain.Persona, error)
}

type personaService struct {
	repo infrastructure.PersonaRepository
}

// NewPersonaService creates a new instance of personaService.
func NewPersonaService(repo infrastructure.PersonaRepository) PersonaService {
	return &personaService{repo: repo}
}

func (s *personaService) ListPersonas(ctx context.Context) ([]domain.Persona, error) {
	personas, err := s.repo.ListPersonas(ctx)
	metrics.ObservePersonaLookup(err)
	if err != nil {
		log.WithError(err).Error("error fetching personas")
		return []domain.Persona{}, err
	}
	if personas == nil {
		personas = []domain.Persona{}
	}
	SortPersonas(personas)
	return personas, nil
}

func (s *personaService) GetPersona(ctx context.Context, id int64) (*domain.Persona, error) {
	persona, err := s.repo.GetPersona(ctx, id)
	metrics.ObservePersonaLookup(err)
	return persona, err
}

// SortPersonas orders personas by audience name ignoring case, then by id.
func SortPersonas(personas []domain.Persona) {
	sort.SliceStable(personas, func(i, j int) bool {
		a, b := strings.ToLower(personas[i].AudienceName), strings.ToLower(personas[j].AudienceName)
		if a != b {
			return a < b
		}
		return personas[i].ID < personas[j].ID
	})
}
