package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/api/shared"
	"github.com/traincore/traincore-api/internal/service/progress"
)

// ProgressHandler handles progress read HTTP requests. Every value it
// serves is recomputed fresh from the summary rows.
type ProgressHandler struct {
	aggregator *progress.Aggregator
	logger     *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(aggregator *progress.Aggregator, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		aggregator: aggregator,
		logger:     logger.With(slog.String("component", "progress_handler")),
	}
}

// GetProgramProgress handles GET /api/programs/{id}/progress requests
func (h *ProgressHandler) GetProgramProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	programID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid program ID")
		return
	}

	p, err := h.aggregator.ProgramProgress(r.Context(), userID, programID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		UserID:    userID,
		ProgramID: &programID,
		Progress:  p,
	})
}

// GetPathProgress handles GET /api/learning-paths/{id}/progress requests
func (h *ProgressHandler) GetPathProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid learning path ID")
		return
	}

	p, err := h.aggregator.PathProgress(r.Context(), userID, pathID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		UserID:         userID,
		LearningPathID: &pathID,
		Progress:       p,
	})
}

// GetMaterialProgress handles GET /api/materials/{id}/progress requests
// The optional program_id query parameter scopes the computation.
func (h *ProgressHandler) GetMaterialProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	materialID, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	var programID *int64
	if raw := r.URL.Query().Get("program_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid program ID")
			return
		}
		programID = &id
	}

	p, err := h.aggregator.MaterialProgress(r.Context(), userID, materialID, programID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		UserID:     userID,
		ProgramID:  programID,
		MaterialID: &materialID,
		Progress:   p,
	})
}
