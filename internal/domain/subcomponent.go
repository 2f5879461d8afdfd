package domain

import (
	"encoding/json"
	"fmt"
)

// SubcomponentKind tags a nested unit owned by a material. Relationship
// sources use the kind together with the owning material id and the
// subcomponent id as a composite reference; the kind resolves to the concrete
// shape only at read time.
type SubcomponentKind string

// The known subcomponent kinds.
const (
	KindChecklistEntry     SubcomponentKind = "checklist_entry"
	KindWorkflowStep       SubcomponentKind = "workflow_step"
	KindVideoTimestamp     SubcomponentKind = "video_timestamp"
	KindQuizQuestion       SubcomponentKind = "quiz_question"
	KindQuizAnswer         SubcomponentKind = "quiz_answer"
	KindQuestionnaireEntry SubcomponentKind = "questionnaire_entry"
	KindImageAnnotation    SubcomponentKind = "image_annotation"
)

var subcomponentKinds = map[SubcomponentKind]struct{}{
	KindChecklistEntry:     {},
	KindWorkflowStep:       {},
	KindVideoTimestamp:     {},
	KindQuizQuestion:       {},
	KindQuizAnswer:         {},
	KindQuestionnaireEntry: {},
	KindImageAnnotation:    {},
}

// IsValid reports whether k is one of the known subcomponent kinds.
func (k SubcomponentKind) IsValid() bool {
	_, ok := subcomponentKinds[k]
	return ok
}

// ParseSubcomponentKind validates a kind tag.
func ParseSubcomponentKind(s string) (SubcomponentKind, error) {
	k := SubcomponentKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSubcomponentKind, s)
	}
	return k, nil
}

// QuizAnswer is one answer option of a quiz question. It belongs to exactly
// one question. The Correct flag is never serialized to learners.
type QuizAnswer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
	Position   int    `json:"position"`
}

// QuizQuestion is one question of a Quiz material. Score is the point value
// awarded for a fully correct answer. ScaleConfig is an opaque configuration
// blob that scale questions must carry; the core never interprets it.
type QuizQuestion struct {
	ID          int64           `json:"id"`
	Text        string          `json:"text"`
	Type        QuestionType    `json:"type"`
	Score       float64         `json:"score"`
	Position    int             `json:"position"`
	ScaleConfig json.RawMessage `json:"scale_config,omitempty"`
	Answers     []QuizAnswer    `json:"answers"`
}

// CorrectAnswerIDs returns the set of answer ids flagged correct.
func (q *QuizQuestion) CorrectAnswerIDs() map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, a := range q.Answers {
		if a.Correct {
			out[a.ID] = struct{}{}
		}
	}
	return out
}

// structuralViolations reports the shape rules for a single question. The
// index locates the question inside the owning quiz for the Ref path.
func (q *QuizQuestion) structuralViolations(index int) []Violation {
	ref := fmt.Sprintf("questions[%d]", index)
	var out []Violation

	switch q.Type {
	case QuestionTypeBoolean:
		if len(q.Answers) != 2 {
			out = append(out, Violation{
				Ref:     ref,
				Message: fmt.Sprintf("boolean question must have exactly 2 answers, has %d", len(q.Answers)),
			})
		}
	case QuestionTypeChoice, QuestionTypeCheckboxes:
		if len(q.Answers) < 2 {
			out = append(out, Violation{
				Ref:     ref,
				Message: fmt.Sprintf("%s question must have at least 2 answers, has %d", q.Type, len(q.Answers)),
			})
		}
	case QuestionTypeScale:
		if len(q.ScaleConfig) == 0 {
			out = append(out, Violation{
				Ref:     ref,
				Message: "scale question is missing its scale configuration",
			})
		}
	}

	if !q.Type.IsValid() {
		out = append(out, Violation{
			Ref:     ref,
			Message: fmt.Sprintf("unknown question type %q", q.Type),
		})
	}
	return out
}

// ChecklistEntry is one item of a Checklist material.
type ChecklistEntry struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
	Position int    `json:"position"`
}

// WorkflowStep is one ordered step of a Workflow material.
type WorkflowStep struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

// VideoTimestamp marks a labeled point in a Video material.
type VideoTimestamp struct {
	ID      int64  `json:"id"`
	Seconds int    `json:"seconds"`
	Label   string `json:"label,omitempty"`
}

// QuestionnaireEntry is one prompt of a Questionnaire material.
type QuestionnaireEntry struct {
	ID       int64  `json:"id"`
	Prompt   string `json:"prompt"`
	Position int    `json:"position"`
}

// ImageAnnotation marks a point of interest on an Image material.
type ImageAnnotation struct {
	ID   int64   `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Note string  `json:"note,omitempty"`
}

// Subcomponents groups every nested collection a material may own. Only the
// collections matching the material's type discriminant may be populated;
// anything else is cross-type leakage and reported as a violation.
type Subcomponents struct {
	Questions            []QuizQuestion       `json:"questions,omitempty"`
	ChecklistEntries     []ChecklistEntry     `json:"checklist_entries,omitempty"`
	WorkflowSteps        []WorkflowStep       `json:"workflow_steps,omitempty"`
	VideoTimestamps      []VideoTimestamp     `json:"video_timestamps,omitempty"`
	QuestionnaireEntries []QuestionnaireEntry `json:"questionnaire_entries,omitempty"`
	ImageAnnotations     []ImageAnnotation    `json:"image_annotations,omitempty"`
}

// NormalizeQuestionTypes rewrites every question's type to its storage value,
// accepting display names and documented synonyms case-insensitively.
// Spellings ParseQuestionType does not recognize are left untouched so
// structural validation can report them against the original input.
func (s *Subcomponents) NormalizeQuestionTypes() {
	for i := range s.Questions {
		if qt, err := ParseQuestionType(string(s.Questions[i].Type)); err == nil {
			s.Questions[i].Type = qt
		}
	}
}

// newSubcomponents initializes the collections the given type owns so fresh
// materials serialize with empty lists rather than nulls.
func newSubcomponents(t MaterialType) Subcomponents {
	var s Subcomponents
	switch t {
	case MaterialTypeQuiz:
		s.Questions = []QuizQuestion{}
	case MaterialTypeChecklist:
		s.ChecklistEntries = []ChecklistEntry{}
	case MaterialTypeWorkflow:
		s.WorkflowSteps = []WorkflowStep{}
	case MaterialTypeVideo:
		s.VideoTimestamps = []VideoTimestamp{}
	case MaterialTypeQuestionnaire:
		s.QuestionnaireEntries = []QuestionnaireEntry{}
	case MaterialTypeImage:
		s.ImageAnnotations = []ImageAnnotation{}
	}
	return s
}

// ownedKinds maps a material type to the subcomponent kinds it may own.
func ownedKinds(t MaterialType) map[SubcomponentKind]struct{} {
	switch t {
	case MaterialTypeQuiz:
		return map[SubcomponentKind]struct{}{KindQuizQuestion: {}, KindQuizAnswer: {}}
	case MaterialTypeChecklist:
		return map[SubcomponentKind]struct{}{KindChecklistEntry: {}}
	case MaterialTypeWorkflow:
		return map[SubcomponentKind]struct{}{KindWorkflowStep: {}}
	case MaterialTypeVideo:
		return map[SubcomponentKind]struct{}{KindVideoTimestamp: {}}
	case MaterialTypeQuestionnaire:
		return map[SubcomponentKind]struct{}{KindQuestionnaireEntry: {}}
	case MaterialTypeImage:
		return map[SubcomponentKind]struct{}{KindImageAnnotation: {}}
	default:
		return nil
	}
}

// leakageViolations reports populated collections that do not belong to the
// material type.
func (s *Subcomponents) leakageViolations(t MaterialType) []Violation {
	owned := ownedKinds(t)
	var out []Violation

	check := func(kind SubcomponentKind, n int) {
		if n == 0 {
			return
		}
		if _, ok := owned[kind]; !ok {
			out = append(out, Violation{
				Ref:     string(kind),
				Message: fmt.Sprintf("material of type %s cannot own %s subcomponents", t, kind),
			})
		}
	}

	check(KindQuizQuestion, len(s.Questions))
	check(KindChecklistEntry, len(s.ChecklistEntries))
	check(KindWorkflowStep, len(s.WorkflowSteps))
	check(KindVideoTimestamp, len(s.VideoTimestamps))
	check(KindQuestionnaireEntry, len(s.QuestionnaireEntries))
	check(KindImageAnnotation, len(s.ImageAnnotations))
	return out
}
