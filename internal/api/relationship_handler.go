package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/traincore/traincore-api/internal/api/shared"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/service/content"
)

// RelationshipHandler handles relationship graph HTTP requests
type RelationshipHandler struct {
	contentService *content.Service
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler
func NewRelationshipHandler(contentService *content.Service, logger *slog.Logger) *RelationshipHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RelationshipHandler")
	}

	return &RelationshipHandler{
		contentService: contentService,
		validator:      validator.New(),
		logger:         logger.With(slog.String("component", "relationship_handler")),
	}
}

// querySourceRef builds a source reference from the {id} URL parameter and
// the optional source_kind / source_subcomponent_id query parameters.
func querySourceRef(r *http.Request) (domain.SourceRef, error) {
	materialID, err := materialIDParam(r)
	if err != nil {
		return domain.SourceRef{}, err
	}

	kindStr := r.URL.Query().Get("source_kind")
	subIDStr := r.URL.Query().Get("source_subcomponent_id")
	if kindStr == "" && subIDStr == "" {
		return domain.MaterialRef(materialID), nil
	}

	kind, err := domain.ParseSubcomponentKind(kindStr)
	if err != nil {
		return domain.SourceRef{}, err
	}
	subID, err := strconv.ParseInt(subIDStr, 10, 64)
	if err != nil {
		return domain.SourceRef{}, err
	}
	return domain.ComponentRef(materialID, kind, subID), nil
}

// Link handles POST /api/materials/{id}/relationships requests
func (h *RelationshipHandler) Link(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	materialID, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	var req LinkRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	source, err := req.sourceRef(materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	rel, err := h.contentService.Link(r.Context(), source, req.TargetMaterialID, req.RelationshipType, req.Order)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("relationship created",
		slog.Int64("relationship_id", rel.ID),
		slog.Int64("source_material_id", materialID),
		slog.Int64("target_material_id", rel.TargetMaterialID))
	shared.RespondWithJSON(w, r, http.StatusCreated, relationshipToResponse(rel))
}

// Unlink handles DELETE /api/relationships/{id} requests
func (h *RelationshipHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid relationship ID")
		return
	}

	if err := h.contentService.Unlink(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("relationship deleted", slog.Int64("relationship_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListRelated handles GET /api/materials/{id}/relationships requests
// The optional source_kind and source_subcomponent_id query parameters
// scope the listing to a subcomponent source.
func (h *RelationshipHandler) ListRelated(w http.ResponseWriter, r *http.Request) {
	source, err := querySourceRef(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid source reference")
		return
	}

	related, err := h.contentService.ListRelated(r.Context(), source)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, related)
}

// ListParents handles GET /api/materials/{id}/parents requests
func (h *RelationshipHandler) ListParents(w http.ResponseWriter, r *http.Request) {
	materialID, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	parents, err := h.contentService.ListParents(r.Context(), materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]RelationshipResponse, 0, len(parents))
	for i := range parents {
		responses = append(responses, relationshipToResponse(&parents[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// ReplaceRelated handles PUT /api/materials/{id}/relationships requests
// The provided set replaces the source's outgoing relationships wholesale.
func (h *RelationshipHandler) ReplaceRelated(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	materialID, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	var req ReplaceRelationshipsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	source, err := req.sourceRef(materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	rels := make([]*domain.Relationship, 0, len(req.Relationships))
	for _, entry := range req.Relationships {
		rel, err := domain.NewRelationship(source, entry.TargetMaterialID, entry.RelationshipType, entry.Order)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		rels = append(rels, rel)
	}

	if err := h.contentService.ReplaceRelated(r.Context(), source, rels); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("relationships replaced",
		slog.Int64("source_material_id", materialID),
		slog.Int("count", len(rels)))

	responses := make([]RelationshipResponse, 0, len(rels))
	for _, rel := range rels {
		responses = append(responses, relationshipToResponse(rel))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
