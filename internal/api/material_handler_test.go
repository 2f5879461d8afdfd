package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/service/content"
	"github.com/traincore/traincore-api/internal/store"
)

func newMaterialRouter(materials *MockMaterialStore, relationships *MockRelationshipStore) chi.Router {
	svc := content.NewService(materials, relationships, fakeTransactor{}, slog.Default())
	h := NewMaterialHandler(svc, slog.Default())

	r := chi.NewRouter()
	r.Post("/api/materials", h.CreateMaterial)
	r.Get("/api/materials/{id}", h.GetMaterial)
	r.Put("/api/materials/{id}", h.ReplaceMaterial)
	r.Delete("/api/materials/{id}", h.DeleteMaterial)
	return r
}

func storedQuiz(t *testing.T) *domain.Material {
	t.Helper()
	m, err := domain.NewMaterial("Valve safety quiz", "", domain.MaterialTypeQuiz)
	require.NoError(t, err)
	m.ID = 42
	m.Subcomponents.Questions = []domain.QuizQuestion{
		{
			ID:    29,
			Text:  "Is the valve open?",
			Type:  domain.QuestionTypeBoolean,
			Score: 5,
			Answers: []domain.QuizAnswer{
				{ID: 37, QuestionID: 29, Text: "Yes", Correct: true},
				{ID: 38, QuestionID: 29, Text: "No"},
			},
		},
	}
	return m
}

func TestCreateMaterialEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates an image material", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		materials.On("Create", mock.Anything, mock.AnythingOfType("*domain.Material")).
			Return(nil)

		router := newMaterialRouter(materials, new(MockRelationshipStore))

		body := `{"name": "Engine diagram", "type": "Image", "payload": {"url": "https://cdn.example.com/engine.png"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		materials.AssertExpectations(t)
	})

	t.Run("question types arrive as display names and synonyms", func(t *testing.T) {
		t.Parallel()

		var persisted *domain.Material
		materials := new(MockMaterialStore)
		materials.On("Create", mock.Anything, mock.AnythingOfType("*domain.Material")).
			Run(func(args mock.Arguments) {
				persisted = args.Get(1).(*domain.Material)
			}).
			Return(nil)

		router := newMaterialRouter(materials, new(MockRelationshipStore))

		body := `{"name": "Valve safety quiz", "type": "Quiz", "subcomponents": {"questions": [
			{"id": 29, "text": "Is the valve open?", "type": "True or False", "score": 5,
			 "answers": [{"id": 37, "text": "Yes", "correct": true}, {"id": 38, "text": "No"}]},
			{"id": 30, "text": "Pick the shutoff", "type": "Radio", "score": 5,
			 "answers": [{"id": 39, "text": "Valve A", "correct": true}, {"id": 40, "text": "Valve B"}]},
			{"id": 31, "text": "Select all hazards", "type": "Multi select", "score": 10,
			 "answers": [{"id": 41, "text": "Heat", "correct": true}, {"id": 42, "text": "Noise", "correct": true}]}
		]}}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, persisted)
		require.Len(t, persisted.Subcomponents.Questions, 3)
		assert.Equal(t, domain.QuestionTypeBoolean, persisted.Subcomponents.Questions[0].Type)
		assert.Equal(t, domain.QuestionTypeChoice, persisted.Subcomponents.Questions[1].Type)
		assert.Equal(t, domain.QuestionTypeCheckboxes, persisted.Subcomponents.Questions[2].Type)
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		t.Parallel()

		router := newMaterialRouter(new(MockMaterialStore), new(MockRelationshipStore))

		body := `{"type": "Image"}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		t.Parallel()

		router := newMaterialRouter(new(MockMaterialStore), new(MockRelationshipStore))

		body := `{"name": "Mystery", "type": "Hologram"}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Unknown material type", resp["error"])
	})

	t.Run("structural violations surface in details", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		router := newMaterialRouter(materials, new(MockRelationshipStore))

		// A checklist entry on an image material is a cross-type violation.
		body := `{"name": "Broken", "type": "Image", "subcomponents": {"checklist_entries": [{"text": "nope"}]}}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error   string             `json:"error"`
			Details []domain.Violation `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Material has structural violations", resp.Error)
		assert.NotEmpty(t, resp.Details)
		materials.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGetMaterialEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("learner view strips answer keys", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		materials.On("GetByID", mock.Anything, int64(42)).Return(storedQuiz(t), nil)

		router := newMaterialRouter(materials, new(MockRelationshipStore))

		req := httptest.NewRequest(http.MethodGet, "/api/materials/42", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"correct"`)
		assert.Contains(t, rec.Body.String(), `"True or False"`)
	})

	t.Run("author view includes answer keys", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		materials.On("GetByID", mock.Anything, int64(42)).Return(storedQuiz(t), nil)

		router := newMaterialRouter(materials, new(MockRelationshipStore))

		req := httptest.NewRequest(http.MethodGet, "/api/materials/42?view=author", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"correct":true`)
	})

	t.Run("missing material returns 404", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		materials.On("GetByID", mock.Anything, int64(404)).
			Return(nil, store.ErrMaterialNotFound)

		router := newMaterialRouter(materials, new(MockRelationshipStore))

		req := httptest.NewRequest(http.MethodGet, "/api/materials/404", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		t.Parallel()

		router := newMaterialRouter(new(MockMaterialStore), new(MockRelationshipStore))

		req := httptest.NewRequest(http.MethodGet, "/api/materials/abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteMaterialEndpoint(t *testing.T) {
	t.Parallel()

	materials := new(MockMaterialStore)
	materials.On("Delete", mock.Anything, int64(42)).Return(nil)

	router := newMaterialRouter(materials, new(MockRelationshipStore))

	req := httptest.NewRequest(http.MethodDelete, "/api/materials/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	materials.AssertExpectations(t)
}
