package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthetic-persona/backend/internal/features/persona/application"
	"synthetic-persona/backend/internal/features/persona/domain"
)

type stubRepository struct {
	personas []domain.Persona
	err      error
}

func (s stubRepository) ListPersonas(context.Context) ([]domain.Persona, error) {
	return s.personas, s.err
}

func (s stubRepository) GetPersona(_ context.Context, id int64) (*domain.Persona, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.personas {
		if s.personas[i].ID == id {
			return &s.personas[i], nil
		}
	}
	return nil, domain.ErrPersonaNotFound
}

func newRouter(repo stubRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPersonaHandler(application.NewPersonaService(repo))
	r := gin.New()
	r.GET("/api/personas", h.ListPersonasHandler)
	r.GET("/api/personas/:id", h.GetPersonaHandler)
	return r
}

type listBody struct {
	Personas []domain.Persona `json:"personas"`
	Error    string           `json:"error"`
}

func TestListPersonasHandler(t *testing.T) {
	summary := "Loves coffee."
	r := newRouter(stubRepository{personas: []domain.Persona{
		{ID: 2, AudienceName: "Zoomers"},
		{ID: 1, AudienceName: "Baristas", AudienceSummary: &summary},
	}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/personas", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Personas, 2)
	assert.Equal(t, "Baristas", body.Personas[0].AudienceName)
	assert.Equal(t, "Loves coffee.", *body.Personas[0].AudienceSummary)
	assert.Nil(t, body.Personas[1].AudienceSummary)
	assert.Empty(t, body.Error)
}

func TestListPersonasHandlerStoreFailure(t *testing.T) {
	r := newRouter(stubRepository{err: errors.New("db down")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/personas", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"personas":[],"error":"Failed to load personas."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestGetPersonaHandler(t *testing.T) {
	r := newRouter(stubRepository{personas: []domain.Persona{{ID: 4, AudienceName: "Gardeners"}}})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "found", path: "/api/personas/4", wantStatus: http.StatusOK,
			wantBody: `{"id":4,"audience_name":"Gardeners","audience_summary":null}`},
		{name: "not found", path: "/api/personas/5", wantStatus: http.StatusNotFound,
			wantBody: `{"error":"Persona not found."}`},
		{name: "bad id", path: "/api/personas/abc", wantStatus: http.StatusBadRequest,
			wantBody: `{"error":"Invalid persona id."}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
		})
	}
}

func TestGetPersonaHandlerUnavailable(t *testing.T) {
	r := newRouter(stubRepository{err: domain.ErrDirectoryUnavailable})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/personas/1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load personas."}`, w.Body.String())
}
