// Package submission processes answer submissions against quiz materials:
// validation, evaluation, aggregation, and the atomic pair-write of the
// history and summary rows.
package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/domain/evaluation"
	"github.com/traincore/traincore-api/internal/service/progress"
	"github.com/traincore/traincore-api/internal/store"
)

// phase names the pipeline stages a submission moves through. Phases exist
// for observability; a submission either completes the whole pipeline or
// leaves no trace.
type phase string

const (
	phaseReceived    phase = "received"
	phaseValidating  phase = "validating"
	phaseEvaluating  phase = "evaluating"
	phaseAggregating phase = "aggregating"
	phasePersisted   phase = "persisted"
)

// Answer is one submitted answer, addressed to a question by id. Exactly one
// of the value fields is meaningful for a given question type; the others
// are ignored.
type Answer struct {
	QuestionID int64
	AnswerIDs  []int64
	Value      *int
	Text       *string
}

// Request is a full submission for one material.
type Request struct {
	ProgramID *int64
	Answers   []Answer
}

// QuestionError reports a per-question problem that did not abort the
// submission.
type QuestionError struct {
	QuestionID int64  `json:"question_id"`
	Message    string `json:"message"`
}

// Result is the outcome of a processed submission. LearningPathProgress is
// set only when the program scope resolved to a learning path containing
// the material.
type Result struct {
	UserID               uuid.UUID
	MaterialID           int64
	ProgramID            *int64
	LearningPathID       *int64
	SubmittedAt          time.Time
	TotalScore           float64
	MaxScore             float64
	Progress             int
	LearningPathProgress *int
	Answers              []domain.AnswerRecord
	QuestionErrors       []QuestionError
}

// Service processes submissions. All persistence happens inside a single
// transaction per submission.
type Service struct {
	materials store.MaterialStore
	history   store.HistoryStore
	programs  store.ProgramStore
	tx        store.Transactor
	logger    *slog.Logger
}

// NewService creates a submission service.
// If logger is nil, a default logger will be used.
func NewService(
	materials store.MaterialStore,
	history store.HistoryStore,
	programs store.ProgramStore,
	tx store.Transactor,
	logger *slog.Logger,
) *Service {
	if materials == nil {
		panic("material store cannot be nil")
	}
	if history == nil {
		panic("history store cannot be nil")
	}
	if programs == nil {
		panic("program store cannot be nil")
	}
	if tx == nil {
		panic("transactor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		materials: materials,
		history:   history,
		programs:  programs,
		tx:        tx,
		logger:    logger.With(slog.String("component", "submission_service")),
	}
}

// Process runs a submission through the full pipeline. Unknown question ids,
// duplicates, and answers whose shape does not match their question's type
// become per-question errors and do not abort the submission; a missing
// material or a material whose type does not accept submissions does.
//
// Resubmission overwrites the previous history and summary rows for the
// (user, material) pair. The returned progress reflects the submission just
// processed.
func (s *Service) Process(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
	req Request,
) (*Result, error) {
	log := s.logger.With(
		slog.String("user_id", userID.String()),
		slog.Int64("material_id", materialID))

	if userID == uuid.Nil {
		return nil, domain.ErrEmptyUserID
	}
	if len(req.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	log.Debug("submission received", slog.String("phase", string(phaseReceived)))

	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material.Type != domain.MaterialTypeQuiz {
		log.Warn("submission against non-quiz material",
			slog.String("material_type", string(material.Type)))
		return nil, fmt.Errorf("%w: material %d has type %s",
			ErrNotSubmittable, materialID, material.Type)
	}

	// Resolve the scope the submission is recorded under up front so the
	// history row carries it.
	var pathID *int64
	if req.ProgramID != nil {
		pathID, err = s.programs.PathForMaterial(ctx, *req.ProgramID, materialID)
		if err != nil {
			return nil, newError("process_submission", "failed to resolve learning path", err)
		}
	}

	log.Debug("submission validating",
		slog.String("phase", string(phaseValidating)),
		slog.Int("answer_count", len(req.Answers)))

	var questionErrors []QuestionError
	seen := make(map[int64]struct{}, len(req.Answers))
	valid := make([]Answer, 0, len(req.Answers))

	for _, a := range req.Answers {
		if _, dup := seen[a.QuestionID]; dup {
			questionErrors = append(questionErrors, QuestionError{
				QuestionID: a.QuestionID,
				Message:    "duplicate answer for question",
			})
			continue
		}
		q, ok := material.Question(a.QuestionID)
		if !ok {
			questionErrors = append(questionErrors, QuestionError{
				QuestionID: a.QuestionID,
				Message:    "question does not belong to this material",
			})
			continue
		}
		shape := evaluation.SubmittedAnswer{AnswerIDs: a.AnswerIDs, Value: a.Value, Text: a.Text}
		if !evaluation.MatchesShape(q, shape) {
			questionErrors = append(questionErrors, QuestionError{
				QuestionID: a.QuestionID,
				Message:    fmt.Sprintf("answer shape does not match question type %s", q.Type),
			})
			continue
		}
		seen[a.QuestionID] = struct{}{}
		valid = append(valid, a)
	}

	log.Debug("submission evaluating",
		slog.String("phase", string(phaseEvaluating)),
		slog.Int("valid_answers", len(valid)),
		slog.Int("question_errors", len(questionErrors)))

	submittedAt := time.Now().UTC()
	records := make([]domain.AnswerRecord, 0, len(valid))
	var totalScore float64

	for _, a := range valid {
		q, _ := material.Question(a.QuestionID)
		verdict := evaluation.Evaluate(q, evaluation.SubmittedAnswer{
			AnswerIDs: a.AnswerIDs,
			Value:     a.Value,
			Text:      a.Text,
		})
		totalScore += verdict.ScoreAwarded
		records = append(records, domain.AnswerRecord{
			QuestionID:   a.QuestionID,
			Type:         q.Type,
			AnswerIDs:    a.AnswerIDs,
			Value:        a.Value,
			Text:         a.Text,
			ScoreAwarded: verdict.ScoreAwarded,
			IsCorrect:    verdict.IsCorrect,
		})
	}

	var maxScore float64
	for _, q := range material.Subcomponents.Questions {
		maxScore += q.Score
	}

	log.Debug("submission aggregating",
		slog.String("phase", string(phaseAggregating)),
		slog.Float64("total_score", totalScore))

	snapshot := domain.NewSnapshot(submittedAt, records, totalScore)
	rawSnapshot, err := json.Marshal(snapshot)
	if err != nil {
		return nil, newError("process_submission", "failed to marshal snapshot", err)
	}

	result := &Result{
		UserID:         userID,
		MaterialID:     materialID,
		ProgramID:      req.ProgramID,
		LearningPathID: pathID,
		SubmittedAt:    submittedAt,
		TotalScore:     totalScore,
		MaxScore:       maxScore,
		Answers:        records,
		QuestionErrors: questionErrors,
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		history := s.history.WithTx(tx)
		programs := s.programs.WithTx(tx)

		data := &domain.UserMaterialData{
			UserID:         userID,
			MaterialID:     materialID,
			ProgramID:      req.ProgramID,
			LearningPathID: pathID,
			Version:        domain.SnapshotVersion,
			SubmittedAt:    submittedAt,
			Snapshot:       rawSnapshot,
		}
		if err := history.UpsertData(ctx, data); err != nil {
			return err
		}

		score := &domain.UserMaterialScore{
			UserID:         userID,
			MaterialID:     materialID,
			ProgramID:      req.ProgramID,
			LearningPathID: pathID,
			Score:          totalScore,
		}
		if err := history.UpsertScore(ctx, score); err != nil {
			return err
		}

		// Progress is recomputed fresh from the summary rows, which now
		// include this submission, then snapshotted back onto the row.
		agg := progress.NewAggregator(history, programs, s.logger)
		p, err := agg.MaterialProgress(ctx, userID, materialID, req.ProgramID)
		if err != nil {
			return err
		}
		score.Progress = p
		if err := history.UpsertScore(ctx, score); err != nil {
			return err
		}

		result.Progress = p
		if pathID != nil {
			pp, err := agg.PathProgress(ctx, userID, *pathID)
			if err != nil {
				return err
			}
			result.LearningPathProgress = &pp
		}
		return nil
	})
	if err != nil {
		return nil, newError("process_submission", "failed to persist submission", err)
	}

	log.Info("submission persisted",
		slog.String("phase", string(phasePersisted)),
		slog.Float64("total_score", totalScore),
		slog.Int("progress", result.Progress))
	return result, nil
}
