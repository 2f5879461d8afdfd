package domain

import (
	"fmt"
	"time"
)

// MaterialType is the type discriminant of a Material. The set of values is
// closed: every material carries exactly one of these, fixed at creation.
type MaterialType string

// The closed set of material type discriminants.
const (
	MaterialTypeImage         MaterialType = "Image"
	MaterialTypeVideo         MaterialType = "Video"
	MaterialTypePDF           MaterialType = "PDF"
	MaterialTypeUnity         MaterialType = "Unity"
	MaterialTypeChatbot       MaterialType = "Chatbot"
	MaterialTypeQuestionnaire MaterialType = "Questionnaire"
	MaterialTypeChecklist     MaterialType = "Checklist"
	MaterialTypeWorkflow      MaterialType = "Workflow"
	MaterialTypeMQTTTemplate  MaterialType = "MQTT_Template"
	MaterialTypeQuiz          MaterialType = "Quiz"
	MaterialTypeDefault       MaterialType = "Default"
	MaterialTypeAIAssistant   MaterialType = "AIAssistant"
)

// materialTypes enumerates every valid discriminant for validation.
var materialTypes = map[MaterialType]struct{}{
	MaterialTypeImage:         {},
	MaterialTypeVideo:         {},
	MaterialTypePDF:           {},
	MaterialTypeUnity:         {},
	MaterialTypeChatbot:       {},
	MaterialTypeQuestionnaire: {},
	MaterialTypeChecklist:     {},
	MaterialTypeWorkflow:      {},
	MaterialTypeMQTTTemplate:  {},
	MaterialTypeQuiz:          {},
	MaterialTypeDefault:       {},
	MaterialTypeAIAssistant:   {},
}

// IsValid reports whether t is one of the known discriminants.
func (t MaterialType) IsValid() bool {
	_, ok := materialTypes[t]
	return ok
}

// ParseMaterialType normalizes a material type string to its canonical
// discriminant. Matching is exact: the discriminant set is part of the wire
// contract and carries no synonyms.
func ParseMaterialType(s string) (MaterialType, error) {
	t := MaterialType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMaterialType, s)
	}
	return t, nil
}

// Material is a top-level training content unit. Its Type discriminant is
// immutable and determines both the payload shape and which subcomponent
// collections may be populated.
type Material struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Type          MaterialType  `json:"type"`
	Payload       Payload       `json:"payload"`
	Subcomponents Subcomponents `json:"subcomponents"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewMaterial creates a zero-valued material of the given type with defaults
// appropriate to that type: the payload is the type's empty closed record and
// the subcomponent collections owned by that type are initialized empty (a
// fresh Quiz has an empty question list, not a nil one).
func NewMaterial(name, description string, t MaterialType) (*Material, error) {
	if name == "" {
		return nil, ErrMaterialNameEmpty
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMaterialType, t)
	}

	now := time.Now().UTC()
	m := &Material{
		Name:        name,
		Description: description,
		Type:        t,
		Payload:     NewPayload(t),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.Subcomponents = newSubcomponents(t)
	return m, nil
}

// Validate checks the material's identity fields and payload discriminant.
// Structural shape issues inside subcomponents are recoverable and are
// reported by StructuralViolations instead; Validate only fails on conditions
// that make the material unusable as an entity.
func (m *Material) Validate() error {
	if m.Name == "" {
		return ErrMaterialNameEmpty
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMaterialType, m.Type)
	}
	if m.Payload == nil {
		return fmt.Errorf("%w: material type %s has no payload", ErrPayloadMismatch, m.Type)
	}
	if m.Payload.Kind() != m.Type {
		return fmt.Errorf("%w: payload is %s, material is %s",
			ErrPayloadMismatch, m.Payload.Kind(), m.Type)
	}
	return nil
}

// Violation describes a single recoverable structural problem within a
// material, located by a human-readable reference path.
type Violation struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

// StructuralViolations returns the list of structural shape problems in the
// material's subcomponent collections. An empty list means the material is
// structurally sound. It never fails: every shape issue it can detect is
// recoverable and reported rather than raised.
//
// Rules enforced:
//   - subcomponent collections populated for a type that does not own them
//     (cross-type field leakage)
//   - boolean questions must have exactly 2 answers
//   - choice and checkboxes questions must have at least 2 answers
//   - scale questions must carry a scale configuration blob
func (m *Material) StructuralViolations() []Violation {
	var out []Violation

	out = append(out, m.Subcomponents.leakageViolations(m.Type)...)

	if m.Type == MaterialTypeQuiz {
		for i := range m.Subcomponents.Questions {
			out = append(out, m.Subcomponents.Questions[i].structuralViolations(i)...)
		}
	}
	return out
}

// Question returns the quiz question with the given id, or false when this
// material has no such question.
func (m *Material) Question(questionID int64) (*QuizQuestion, bool) {
	for i := range m.Subcomponents.Questions {
		if m.Subcomponents.Questions[i].ID == questionID {
			return &m.Subcomponents.Questions[i], true
		}
	}
	return nil, false
}
