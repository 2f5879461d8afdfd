package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/api/shared"
	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/service/submission"
	"github.com/traincore/traincore-api/internal/store"
)

// SubmissionHandler handles answer submission HTTP requests
type SubmissionHandler struct {
	submissionService *submission.Service
	historyStore      store.HistoryStore
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(
	submissionService *submission.Service,
	historyStore store.HistoryStore,
	logger *slog.Logger,
) *SubmissionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SubmissionHandler")
	}

	return &SubmissionHandler{
		submissionService: submissionService,
		historyStore:      historyStore,
		validator:         validator.New(),
		logger:            logger.With(slog.String("component", "submission_handler")),
	}
}

// Submit handles POST /api/materials/{id}/submissions requests
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	materialID, err := materialIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	var req SubmitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	answers := make([]submission.Answer, 0, len(req.Questions))
	for _, q := range req.Questions {
		answers = append(answers, submission.Answer{
			QuestionID: q.QuestionID,
			AnswerIDs:  q.Answer.AnswerIDs,
			Value:      q.Answer.Value,
			Text:       q.Answer.Text,
		})
	}

	result, err := h.submissionService.Process(r.Context(), userID, materialID, submission.Request{
		ProgramID: req.ProgramID,
		Answers:   answers,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := SubmitResponse{
		Success:              true,
		MaterialID:           result.MaterialID,
		ProgramID:            result.ProgramID,
		LearningPathID:       result.LearningPathID,
		Score:                result.TotalScore,
		Progress:             result.Progress,
		LearningPathProgress: result.LearningPathProgress,
		QuestionErrors:       result.QuestionErrors,
	}
	if len(result.QuestionErrors) > 0 {
		resp.Message = "Some questions could not be evaluated"
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetHistory handles GET /api/materials/{id}/submissions/me requests
// It returns the authenticated user's latest submission snapshot.
func (h *SubmissionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
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

	data, err := h.historyStore.GetData(r.Context(), userID, materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmissionHistoryResponse{
		UserID:         data.UserID,
		MaterialID:     data.MaterialID,
		ProgramID:      data.ProgramID,
		LearningPathID: data.LearningPathID,
		Version:        data.Version,
		SubmittedAt:    data.SubmittedAt,
		Snapshot:       data.Snapshot,
	})
}

// GetScore handles GET /api/materials/{id}/score requests
// It returns the authenticated user's summary row for the material.
func (h *SubmissionHandler) GetScore(w http.ResponseWriter, r *http.Request) {
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

	score, err := h.historyStore.GetScore(r.Context(), userID, materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ScoreResponse{
		UserID:         score.UserID,
		MaterialID:     score.MaterialID,
		ProgramID:      score.ProgramID,
		LearningPathID: score.LearningPathID,
		Score:          score.Score,
		Progress:       score.Progress,
		UpdatedAt:      score.UpdatedAt,
	})
}
