package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"synthetic-persona/backend/internal/db"
	"synthetic-persona/backend/internal/features/persona/domain"
)

// PersonaRepository reads personas from the directory store.
type PersonaRepository interface {
	ListPersonas(ctx context.Context) ([]domain.Persona, error)
	GetPersona(ctx context.Context, id int64) (*domain.Persona, error)
}

var personaColumns = []string{"id", "audience_name", "audience_summary"}

type gormPersonaRepository struct {
	dbc *db.DB
}

// NewPersonaRepository creates a repository over the audiences table.
func NewPersonaRepository(dbc *db.DB) PersonaRepository {
	return &gormPersonaRepository{dbc: dbc}
}

func (r *gormPersonaRepository) ListPersonas(ctx context.Context) ([]domain.Persona, error) {
	var personas []domain.Persona
	res := r.dbc.DB.WithContext(ctx).
		Select(personaColumns).
		Order("lower(audience_name), id").
		Find(&personas)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "listing audiences")
	}
	return personas, nil
}

func (r *gormPersonaRepository) GetPersona(ctx context.Context, id int64) (*domain.Persona, error) {
	var persona domain.Persona
	res := r.dbc.DB.WithContext(ctx).Select(personaColumns).Where("id = ?", id).Take(&persona)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPersonaNotFound
	}
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "loading audience %d", id)
	}
	return &persona, nil
}

type unavailableRepository struct{}

// NewUnavailableRepository is used when no directory DSN is configured. Every
// read fails with domain.ErrDirectoryUnavailable.
func NewUnavailableRepository() PersonaRepository {
	return unavailableRepository{}
}

func (unavailableRepository) ListPersonas(context.Context) ([]domain.Persona, error) {
	return nil, domain.ErrDirectoryUnavailable
}

func (unavailableRepository) GetPersona(context.Context, int64) (*domain.Persona, error) {
	return nil, domain.ErrDirectoryUnavailable
}
