package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is the type-specific portion of a material. Each material type has
// exactly one payload shape: a closed record, not an open bag of fields. The
// persistence mapper resolves the discriminant to the correct concrete shape
// at read and write time via UnmarshalPayload.
type Payload interface {
	// Kind returns the material type this payload belongs to.
	Kind() MaterialType
}

// ImagePayload holds the fields specific to Image materials.
type ImagePayload struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// VideoPayload holds the fields specific to Video materials.
type VideoPayload struct {
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// PDFPayload holds the fields specific to PDF materials.
type PDFPayload struct {
	URL       string `json:"url"`
	PageCount int    `json:"page_count,omitempty"`
}

// UnityPayload holds the fields specific to Unity materials.
type UnityPayload struct {
	BundleURL string `json:"bundle_url"`
	SceneName string `json:"scene_name,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ChatbotPayload holds the fields specific to Chatbot materials.
type ChatbotPayload struct {
	Greeting string `json:"greeting,omitempty"`
	FlowRef  string `json:"flow_ref,omitempty"`
}

// QuestionnairePayload holds the fields specific to Questionnaire materials.
type QuestionnairePayload struct {
	Intro     string `json:"intro,omitempty"`
	Anonymous bool   `json:"anonymous,omitempty"`
}

// ChecklistPayload holds the fields specific to Checklist materials.
type ChecklistPayload struct {
	RequireAll bool `json:"require_all,omitempty"`
}

// WorkflowPayload holds the fields specific to Workflow materials.
type WorkflowPayload struct {
	AutoAdvance bool `json:"auto_advance,omitempty"`
}

// MQTTTemplatePayload holds the fields specific to MQTT_Template materials.
type MQTTTemplatePayload struct {
	Topic    string `json:"topic"`
	Template string `json:"template,omitempty"`
	QoS      int    `json:"qos,omitempty"`
}

// QuizPayload holds the fields specific to Quiz materials. The questions
// themselves are subcomponents, not payload fields.
type QuizPayload struct {
	PassingScore     float64 `json:"passing_score,omitempty"`
	ShuffleQuestions bool    `json:"shuffle_questions,omitempty"`
}

// DefaultPayload holds the fields specific to Default materials.
type DefaultPayload struct {
	Body string `json:"body,omitempty"`
}

// AIAssistantPayload holds the fields specific to AIAssistant materials.
type AIAssistantPayload struct {
	SystemPrompt string `json:"system_prompt,omitempty"`
	Model        string `json:"model,omitempty"`
}

func (ImagePayload) Kind() MaterialType         { return MaterialTypeImage }
func (VideoPayload) Kind() MaterialType         { return MaterialTypeVideo }
func (PDFPayload) Kind() MaterialType           { return MaterialTypePDF }
func (UnityPayload) Kind() MaterialType         { return MaterialTypeUnity }
func (ChatbotPayload) Kind() MaterialType       { return MaterialTypeChatbot }
func (QuestionnairePayload) Kind() MaterialType { return MaterialTypeQuestionnaire }
func (ChecklistPayload) Kind() MaterialType     { return MaterialTypeChecklist }
func (WorkflowPayload) Kind() MaterialType      { return MaterialTypeWorkflow }
func (MQTTTemplatePayload) Kind() MaterialType  { return MaterialTypeMQTTTemplate }
func (QuizPayload) Kind() MaterialType          { return MaterialTypeQuiz }
func (DefaultPayload) Kind() MaterialType       { return MaterialTypeDefault }
func (AIAssistantPayload) Kind() MaterialType   { return MaterialTypeAIAssistant }

// NewPayload returns the zero-valued payload record for the given type.
// Unknown types yield a DefaultPayload; callers that care should validate the
// type first.
func NewPayload(t MaterialType) Payload {
	switch t {
	case MaterialTypeImage:
		return &ImagePayload{}
	case MaterialTypeVideo:
		return &VideoPayload{}
	case MaterialTypePDF:
		return &PDFPayload{}
	case MaterialTypeUnity:
		return &UnityPayload{}
	case MaterialTypeChatbot:
		return &ChatbotPayload{}
	case MaterialTypeQuestionnaire:
		return &QuestionnairePayload{}
	case MaterialTypeChecklist:
		return &ChecklistPayload{}
	case MaterialTypeWorkflow:
		return &WorkflowPayload{}
	case MaterialTypeMQTTTemplate:
		return &MQTTTemplatePayload{}
	case MaterialTypeQuiz:
		return &QuizPayload{}
	case MaterialTypeAIAssistant:
		return &AIAssistantPayload{}
	default:
		return &DefaultPayload{}
	}
}

// UnmarshalPayload decodes raw JSON into the concrete payload shape for the
// given discriminant. Fields not belonging to the shape are rejected so a
// stored payload can never smuggle another type's fields.
func UnmarshalPayload(t MaterialType, data []byte) (Payload, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMaterialType, t)
	}
	p := NewPayload(t)
	if len(data) == 0 {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: decoding %s payload: %v", ErrPayloadMismatch, t, err)
	}
	return p, nil
}

// MarshalPayload encodes a payload for storage, verifying it matches the
// expected discriminant first.
func MarshalPayload(t MaterialType, p Payload) ([]byte, error) {
	if p == nil {
		p = NewPayload(t)
	}
	if p.Kind() != t {
		return nil, fmt.Errorf("%w: payload is %s, expected %s", ErrPayloadMismatch, p.Kind(), t)
	}
	return json.Marshal(p)
}
