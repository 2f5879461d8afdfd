package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is the current version of the history JSON layout.
const SnapshotVersion = 1

// AnswerRecord is one evaluated question inside a submission snapshot. The
// answer fields mirror the submitted shape; ScoreAwarded and IsCorrect are
// the evaluator's verdict.
type AnswerRecord struct {
	QuestionID   int64        `json:"question_id"`
	Type         QuestionType `json:"type"`
	AnswerIDs    []int64      `json:"answer_ids,omitempty"`
	Value        *int         `json:"value,omitempty"`
	Text         *string      `json:"text,omitempty"`
	ScoreAwarded float64      `json:"score_awarded"`
	IsCorrect    bool         `json:"is_correct"`
}

// SubmissionSnapshot is the versioned JSON stored in the history tier. It is
// the authoritative record of the user's most recent submission; the summary
// row is always recomputable from it.
type SubmissionSnapshot struct {
	Version     int            `json:"version"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Answers     []AnswerRecord `json:"answers"`
	TotalScore  float64        `json:"total_score"`
}

// UserMaterialData is the history row: one per (UserID, MaterialID), holding
// the versioned snapshot of the latest submission. Resubmission overwrites,
// never duplicates.
type UserMaterialData struct {
	UserID         uuid.UUID       `json:"user_id"`
	MaterialID     int64           `json:"material_id"`
	ProgramID      *int64          `json:"program_id,omitempty"`
	LearningPathID *int64          `json:"learning_path_id,omitempty"`
	Version        int             `json:"version"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	Snapshot       json.RawMessage `json:"snapshot"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate checks the row's identity fields.
func (d *UserMaterialData) Validate() error {
	if d.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if d.MaterialID == 0 {
		return ErrEmptyMaterialID
	}
	return nil
}

// UserMaterialScore is the summary row: one per (UserID, MaterialID), holding
// the score and the progress snapshot derived at submission time. Progress
// values served to clients are always recomputed from the row set, never
// read incrementally from this column.
type UserMaterialScore struct {
	UserID         uuid.UUID `json:"user_id"`
	MaterialID     int64     `json:"material_id"`
	ProgramID      *int64    `json:"program_id,omitempty"`
	LearningPathID *int64    `json:"learning_path_id,omitempty"`
	Score          float64   `json:"score"`
	Progress       int       `json:"progress"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks the row's identity fields and progress range.
func (s *UserMaterialScore) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.MaterialID == 0 {
		return ErrEmptyMaterialID
	}
	if s.Progress < 0 || s.Progress > 100 {
		return ErrValidation
	}
	return nil
}

// NewSnapshot assembles a versioned submission snapshot.
func NewSnapshot(submittedAt time.Time, answers []AnswerRecord, totalScore float64) SubmissionSnapshot {
	return SubmissionSnapshot{
		Version:     SnapshotVersion,
		SubmittedAt: submittedAt,
		Answers:     answers,
		TotalScore:  totalScore,
	}
}
