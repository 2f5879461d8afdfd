// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
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

// MaterialHandler handles material authoring and read HTTP requests
type MaterialHandler struct {
	contentService *content.Service
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(contentService *content.Service, logger *slog.Logger) *MaterialHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MaterialHandler")
	}

	return &MaterialHandler{
		contentService: contentService,
		validator:      validator.New(),
		logger:         logger.With(slog.String("component", "material_handler")),
	}
}

// materialIDParam parses the {id} URL parameter.
func materialIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// CreateMaterial handles POST /api/materials requests
func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateMaterialRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	material, err := h.buildMaterial(req.Name, req.Description, req.Type, req.Payload, req.Subcomponents)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.contentService.CreateMaterial(r.Context(), material); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Info("material created",
		slog.Int64("material_id", material.ID),
		slog.String("material_type", string(material.Type)))
	shared.RespondWithJSON(w, r, http.StatusCreated, material.Serialize(true))
}

// GetMaterial handles GET /api/materials/{id} requests
// Answer keys are stripped unless the caller asks for the authoring view
// with ?view=author.
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	material, err := h.contentService.GetMaterial(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	includeAnswerKeys := r.URL.Query().Get("view") == "author"
	shared.RespondWithJSON(w, r, http.StatusOK, material.Serialize(includeAnswerKeys))
}

// ReplaceMaterial handles PUT /api/materials/{id} requests
func (h *MaterialHandler) ReplaceMaterial(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	var req ReplaceMaterialRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	material, err := h.buildMaterial(req.Name, req.Description, req.Type, req.Payload, req.Subcomponents)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	material.ID = id

	if err := h.contentService.ReplaceMaterial(r.Context(), material); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Info("material replaced", slog.Int64("material_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, material.Serialize(true))
}

// DeleteMaterial handles DELETE /api/materials/{id} requests
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	if err := h.contentService.DeleteMaterial(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("material deleted", slog.Int64("material_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// buildMaterial assembles a domain material from request fields, decoding
// the payload against the declared type.
func (h *MaterialHandler) buildMaterial(
	name, description, typeStr string,
	rawPayload []byte,
	subcomponents *domain.Subcomponents,
) (*domain.Material, error) {
	materialType, err := domain.ParseMaterialType(typeStr)
	if err != nil {
		return nil, err
	}

	material, err := domain.NewMaterial(name, description, materialType)
	if err != nil {
		return nil, err
	}

	if len(rawPayload) > 0 {
		payload, err := domain.UnmarshalPayload(materialType, rawPayload)
		if err != nil {
			return nil, err
		}
		material.Payload = payload
	}
	if subcomponents != nil {
		material.Subcomponents = *subcomponents
	}
	return material, nil
}

// respondServiceError maps a content service error to a response, attaching
// structural violations when present.
func (h *MaterialHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *content.ValidationError
	if errors.As(err, &validationErr) {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, GetSafeErrorMessage(err), err,
			shared.WithDetails(validationErr.Violations))
		return
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
