package domain

import (
	"encoding/json"
	"time"
)

// WireAnswer is the wire form of a quiz answer. Correct is omitted unless the
// serialization includes answer keys (authoring reads only).
type WireAnswer struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Correct  *bool  `json:"correct,omitempty"`
	Position int    `json:"position"`
}

// WireQuestion is the wire form of a quiz question. Type carries the display
// name, not the storage value.
type WireQuestion struct {
	ID          int64           `json:"id"`
	Text        string          `json:"text"`
	Type        string          `json:"type"`
	Score       float64         `json:"score"`
	Position    int             `json:"position"`
	ScaleConfig json.RawMessage `json:"scale_config,omitempty"`
	Answers     []WireAnswer    `json:"answers,omitempty"`
}

// WireSubcomponents mirrors Subcomponents with questions in wire form.
type WireSubcomponents struct {
	Questions            []WireQuestion       `json:"questions,omitempty"`
	ChecklistEntries     []ChecklistEntry     `json:"checklist_entries,omitempty"`
	WorkflowSteps        []WorkflowStep       `json:"workflow_steps,omitempty"`
	VideoTimestamps      []VideoTimestamp     `json:"video_timestamps,omitempty"`
	QuestionnaireEntries []QuestionnaireEntry `json:"questionnaire_entries,omitempty"`
	ImageAnnotations     []ImageAnnotation    `json:"image_annotations,omitempty"`
}

// WireMaterial is the serialized form of a material: storage question types
// replaced by their display names, payload typed by the discriminant.
type WireMaterial struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Type          MaterialType      `json:"type"`
	Payload       Payload           `json:"payload"`
	Subcomponents WireSubcomponents `json:"subcomponents"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Serialize converts the material to its wire representation, applying the
// question-type display-name mapping. When includeAnswerKeys is false the
// per-answer Correct flags are stripped, which is the form served to
// learners; authoring reads pass true.
func (m *Material) Serialize(includeAnswerKeys bool) *WireMaterial {
	w := &WireMaterial{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Type:        m.Type,
		Payload:     m.Payload,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	w.Subcomponents = WireSubcomponents{
		ChecklistEntries:     m.Subcomponents.ChecklistEntries,
		WorkflowSteps:        m.Subcomponents.WorkflowSteps,
		VideoTimestamps:      m.Subcomponents.VideoTimestamps,
		QuestionnaireEntries: m.Subcomponents.QuestionnaireEntries,
		ImageAnnotations:     m.Subcomponents.ImageAnnotations,
	}

	if m.Subcomponents.Questions != nil {
		w.Subcomponents.Questions = make([]WireQuestion, 0, len(m.Subcomponents.Questions))
		for _, q := range m.Subcomponents.Questions {
			wq := WireQuestion{
				ID:          q.ID,
				Text:        q.Text,
				Type:        q.Type.DisplayName(),
				Score:       q.Score,
				Position:    q.Position,
				ScaleConfig: q.ScaleConfig,
			}
			for _, a := range q.Answers {
				wa := WireAnswer{
					ID:       a.ID,
					Text:     a.Text,
					Position: a.Position,
				}
				if includeAnswerKeys {
					correct := a.Correct
					wa.Correct = &correct
				}
				wq.Answers = append(wq.Answers, wa)
			}
			w.Subcomponents.Questions = append(w.Subcomponents.Questions, wq)
		}
	}
	return w
}
