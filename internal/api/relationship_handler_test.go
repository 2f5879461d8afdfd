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

func newRelationshipRouter(materials *MockMaterialStore, relationships *MockRelationshipStore) chi.Router {
	svc := content.NewService(materials, relationships, fakeTransactor{}, slog.Default())
	h := NewRelationshipHandler(svc, slog.Default())

	r := chi.NewRouter()
	r.Post("/api/materials/{id}/relationships", h.Link)
	r.Get("/api/materials/{id}/relationships", h.ListRelated)
	r.Put("/api/materials/{id}/relationships", h.ReplaceRelated)
	r.Get("/api/materials/{id}/parents", h.ListParents)
	r.Delete("/api/relationships/{id}", h.Unlink)
	return r
}

func TestLinkEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates a link from a quiz question", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		materials.On("GetByID", mock.Anything, int64(42)).Return(storedQuiz(t), nil)

		relationships := new(MockRelationshipStore)
		relationships.On("Link", mock.Anything, mock.AnythingOfType("*domain.Relationship")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Relationship).ID = 55
			}).
			Return(nil)

		router := newRelationshipRouter(materials, relationships)

		body := `{"source_kind": "quiz_question", "source_subcomponent_id": 29, "target_material_id": 9, "relationship_type": "explains"}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials/42/relationships", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp RelationshipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(55), resp.ID)
		assert.Equal(t, int64(9), resp.TargetMaterialID)
	})

	t.Run("missing target material is a bad request", func(t *testing.T) {
		t.Parallel()

		materials := new(MockMaterialStore)
		materials.On("GetByID", mock.Anything, int64(42)).Return(storedQuiz(t), nil)

		relationships := new(MockRelationshipStore)
		relationships.On("Link", mock.Anything, mock.Anything).
			Return(store.ErrInvalidEntity)

		router := newRelationshipRouter(materials, relationships)

		body := `{"target_material_id": 9999}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials/42/relationships", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown source kind is rejected", func(t *testing.T) {
		t.Parallel()

		router := newRelationshipRouter(new(MockMaterialStore), new(MockRelationshipStore))

		body := `{"source_kind": "hologram", "source_subcomponent_id": 29, "target_material_id": 9}`
		req := httptest.NewRequest(http.MethodPost, "/api/materials/42/relationships", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListRelatedEndpoint(t *testing.T) {
	t.Parallel()

	order := 1
	relationships := new(MockRelationshipStore)
	relationships.On("ListOutgoing", mock.Anything, domain.MaterialRef(42)).
		Return([]domain.RelatedMaterial{
			{MaterialID: 9, Name: "Valve anatomy", Type: domain.MaterialTypeVideo, Order: &order},
		}, nil)

	router := newRelationshipRouter(new(MockMaterialStore), relationships)

	req := httptest.NewRequest(http.MethodGet, "/api/materials/42/relationships", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.RelatedMaterial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Valve anatomy", resp[0].Name)
}

func TestReplaceRelatedEndpoint(t *testing.T) {
	t.Parallel()

	materials := new(MockMaterialStore)
	materials.On("GetByID", mock.Anything, int64(42)).Return(storedQuiz(t), nil)

	relationships := new(MockRelationshipStore)
	relationships.On("ReplaceForSource", mock.Anything, domain.MaterialRef(42), mock.Anything).
		Return(nil)

	router := newRelationshipRouter(materials, relationships)

	body := `{"relationships": [{"target_material_id": 8, "order": 0}, {"target_material_id": 9, "order": 1}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/materials/42/relationships", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	relationships.AssertExpectations(t)
}

func TestUnlinkEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("deletes an existing relationship", func(t *testing.T) {
		t.Parallel()

		relationships := new(MockRelationshipStore)
		relationships.On("Unlink", mock.Anything, int64(55)).Return(nil)

		router := newRelationshipRouter(new(MockMaterialStore), relationships)

		req := httptest.NewRequest(http.MethodDelete, "/api/relationships/55", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing relationship returns 404", func(t *testing.T) {
		t.Parallel()

		relationships := new(MockRelationshipStore)
		relationships.On("Unlink", mock.Anything, int64(55)).
			Return(store.ErrRelationshipNotFound)

		router := newRelationshipRouter(new(MockMaterialStore), relationships)

		req := httptest.NewRequest(http.MethodDelete, "/api/relationships/55", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
