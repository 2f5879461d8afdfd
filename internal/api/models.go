package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/service/submission"
)

// Common request/response structures

// CreateMaterialRequest defines the payload for creating a material. The
// payload blob is decoded against the declared type; unknown fields reject.
type CreateMaterialRequest struct {
	Name          string                `json:"name"          validate:"required,min=1,max=255"`
	Description   string                `json:"description"   validate:"max=4000"`
	Type          string                `json:"type"          validate:"required"`
	Payload       json.RawMessage       `json:"payload,omitempty"`
	Subcomponents *domain.Subcomponents `json:"subcomponents,omitempty"`
}

// ReplaceMaterialRequest defines the payload for a full material update.
// The type must match the stored discriminant; subcomponent collections
// replace the stored ones wholesale.
type ReplaceMaterialRequest struct {
	Name          string                `json:"name"          validate:"required,min=1,max=255"`
	Description   string                `json:"description"   validate:"max=4000"`
	Type          string                `json:"type"          validate:"required"`
	Payload       json.RawMessage       `json:"payload,omitempty"`
	Subcomponents *domain.Subcomponents `json:"subcomponents,omitempty"`
}

// SourceRefParams carries the optional subcomponent half of a relationship
// source reference. Both fields set means a subcomponent source; both empty
// means the material itself.
type SourceRefParams struct {
	SourceKind           string `json:"source_kind,omitempty"`
	SourceSubcomponentID int64  `json:"source_subcomponent_id,omitempty"`
}

// LinkRequest defines the payload for creating a relationship out of a
// material or one of its subcomponents.
type LinkRequest struct {
	SourceRefParams
	TargetMaterialID int64  `json:"target_material_id" validate:"required,gt=0"`
	RelationshipType string `json:"relationship_type"  validate:"max=100"`
	Order            *int   `json:"order,omitempty"`
}

// RelationshipEntry is one element of a relationship replacement set.
type RelationshipEntry struct {
	TargetMaterialID int64  `json:"target_material_id" validate:"required,gt=0"`
	RelationshipType string `json:"relationship_type"  validate:"max=100"`
	Order            *int   `json:"order,omitempty"`
}

// ReplaceRelationshipsRequest defines the payload for replacing a source's
// outgoing relationships wholesale.
type ReplaceRelationshipsRequest struct {
	SourceRefParams
	Relationships []RelationshipEntry `json:"relationships" validate:"required,dive"`
}

// RelationshipResponse is the wire form of a persisted relationship.
type RelationshipResponse struct {
	ID                   int64     `json:"id"`
	SourceMaterialID     int64     `json:"source_material_id"`
	SourceKind           string    `json:"source_kind,omitempty"`
	SourceSubcomponentID *int64    `json:"source_subcomponent_id,omitempty"`
	TargetMaterialID     int64     `json:"target_material_id"`
	RelationshipType     string    `json:"relationship_type,omitempty"`
	Order                *int      `json:"order,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// SubmittedAnswerBody is the answer half of a submitted question entry.
// Which field is meaningful depends on the question's type.
type SubmittedAnswerBody struct {
	AnswerIDs []int64 `json:"answer_ids,omitempty"`
	Value     *int    `json:"value,omitempty"`
	Text      *string `json:"text,omitempty"`
}

// SubmissionQuestion is one submitted question entry within a submission
// request.
type SubmissionQuestion struct {
	QuestionID int64               `json:"question_id" validate:"required,gt=0"`
	Answer     SubmittedAnswerBody `json:"answer"`
}

// SubmitRequest defines the payload for submitting answers to a material.
type SubmitRequest struct {
	ProgramID *int64               `json:"program_id,omitempty" validate:"omitempty,gt=0"`
	Questions []SubmissionQuestion `json:"questions"            validate:"required,min=1,dive"`
}

// SubmitResponse defines the outcome returned for a processed submission.
// LearningPathProgress is present only when the program scope resolved to a
// learning path containing the material.
type SubmitResponse struct {
	Success              bool                       `json:"success"`
	MaterialID           int64                      `json:"material_id"`
	ProgramID            *int64                     `json:"program_id,omitempty"`
	LearningPathID       *int64                     `json:"learning_path_id,omitempty"`
	Score                float64                    `json:"score"`
	Progress             int                        `json:"progress"`
	LearningPathProgress *int                       `json:"learning_path_progress,omitempty"`
	Message              string                     `json:"message,omitempty"`
	QuestionErrors       []submission.QuestionError `json:"question_errors,omitempty"`
}

// SubmissionHistoryResponse is the wire form of a stored submission
// snapshot.
type SubmissionHistoryResponse struct {
	UserID         uuid.UUID       `json:"user_id"`
	MaterialID     int64           `json:"material_id"`
	ProgramID      *int64          `json:"program_id,omitempty"`
	LearningPathID *int64          `json:"learning_path_id,omitempty"`
	Version        int             `json:"version"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	Snapshot       json.RawMessage `json:"snapshot"`
}

// ScoreResponse is the wire form of the summary row.
type ScoreResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	MaterialID     int64     `json:"material_id"`
	ProgramID      *int64    `json:"program_id,omitempty"`
	LearningPathID *int64    `json:"learning_path_id,omitempty"`
	Score          float64   `json:"score"`
	Progress       int       `json:"progress"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProgressResponse reports a freshly computed completion percentage for a
// scope.
type ProgressResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	ProgramID      *int64    `json:"program_id,omitempty"`
	LearningPathID *int64    `json:"learning_path_id,omitempty"`
	MaterialID     *int64    `json:"material_id,omitempty"`
	Progress       int       `json:"progress"`
}

// relationshipToResponse converts a domain.Relationship to its wire form.
func relationshipToResponse(rel *domain.Relationship) RelationshipResponse {
	resp := RelationshipResponse{
		ID:               rel.ID,
		SourceMaterialID: rel.Source.MaterialID,
		TargetMaterialID: rel.TargetMaterialID,
		RelationshipType: rel.Type,
		Order:            rel.Order,
		CreatedAt:        rel.CreatedAt,
	}
	if rel.Source.Subcomponent != nil {
		resp.SourceKind = string(rel.Source.Subcomponent.Kind)
		subID := rel.Source.Subcomponent.ID
		resp.SourceSubcomponentID = &subID
	}
	return resp
}

// sourceRef builds the domain source reference for a material id and the
// optional subcomponent parameters.
func (p SourceRefParams) sourceRef(materialID int64) (domain.SourceRef, error) {
	if p.SourceKind == "" && p.SourceSubcomponentID == 0 {
		return domain.MaterialRef(materialID), nil
	}
	kind, err := domain.ParseSubcomponentKind(p.SourceKind)
	if err != nil {
		return domain.SourceRef{}, err
	}
	return domain.ComponentRef(materialID, kind, p.SourceSubcomponentID), nil
}
