package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"synthetic-persona/backend/internal/features/persona/application"
	"synthetic-persona/backend/internal/features/persona/domain"
)

const (
	msgPersonasFailed  = "Failed to load personas."
	msgPersonaNotFound = "Persona not found."
	msgInvalidID       = "Invalid persona id."
)

// PersonaHandler holds the persona service.
type PersonaHandler struct {
	personaService application.PersonaService
}

// NewPersonaHandler creates a new PersonaHandler.
func NewPersonaHandler(personaService application.PersonaService) *PersonaHandler {
	return &PersonaHandler{personaService: personaService}
}

// ListPersonasHandler returns every persona. A directory failure still returns
// an empty list, alongside an error marker, so the UI can tell "error" from
// "empty".
func (h *PersonaHandler) ListPersonasHandler(c *gin.Context) {
	personas, err := h.personaService.ListPersonas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"personas": personas, "error": msgPersonasFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"personas": personas})
}

// GetPersonaHandler returns a single persona by id.
func (h *PersonaHandler) GetPersonaHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidID})
		return
	}

	persona, err := h.personaService.GetPersona(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrPersonaNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgPersonaNotFound})
	case err != nil:
		log.WithError(err).WithField("id", id).Error("error fetching persona")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgPersonasFailed})
	default:
		c.JSON(http.StatusOK, persona)
	}
}
