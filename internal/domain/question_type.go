package domain

import (
	"fmt"
	"strings"
)

// QuestionType is the storage form of a quiz question's type. The wire form
// uses human display names; ParseQuestionType accepts either side of the
// mapping (plus documented synonyms, case-insensitively) and always
// normalizes to one of the five storage values before evaluation.
type QuestionType string

// Storage values for question types.
const (
	QuestionTypeText       QuestionType = "text"
	QuestionTypeBoolean    QuestionType = "boolean"
	QuestionTypeChoice     QuestionType = "choice"
	QuestionTypeCheckboxes QuestionType = "checkboxes"
	QuestionTypeScale      QuestionType = "scale"
)

// displayNames maps storage values to their canonical wire display names.
var displayNames = map[QuestionType]string{
	QuestionTypeText:       "Open",
	QuestionTypeBoolean:    "True or False",
	QuestionTypeChoice:     "Multiple choice",
	QuestionTypeCheckboxes: "Selection checkboxes",
	QuestionTypeScale:      "Scale",
}

// questionTypeSynonyms maps lowercased accepted inputs to storage values.
// Both storage values and display names are accepted, alongside the historic
// synonyms some authoring clients still send.
var questionTypeSynonyms = map[string]QuestionType{
	"text":                 QuestionTypeText,
	"open":                 QuestionTypeText,
	"boolean":              QuestionTypeBoolean,
	"true or false":        QuestionTypeBoolean,
	"yes/no":               QuestionTypeBoolean,
	"yes or no":            QuestionTypeBoolean,
	"choice":               QuestionTypeChoice,
	"multiple choice":      QuestionTypeChoice,
	"single choice":        QuestionTypeChoice,
	"radio":                QuestionTypeChoice,
	"checkboxes":           QuestionTypeCheckboxes,
	"selection checkboxes": QuestionTypeCheckboxes,
	"checkbox":             QuestionTypeCheckboxes,
	"multi select":         QuestionTypeCheckboxes,
	"scale":                QuestionTypeScale,
	"likert":               QuestionTypeScale,
	"rating":               QuestionTypeScale,
}

// IsValid reports whether qt is one of the five storage values.
func (qt QuestionType) IsValid() bool {
	_, ok := displayNames[qt]
	return ok
}

// DisplayName returns the wire display name for a storage value. Unknown
// values are passed through unchanged so serialization never invents a name.
func (qt QuestionType) DisplayName() string {
	if name, ok := displayNames[qt]; ok {
		return name
	}
	return string(qt)
}

// ParseQuestionType normalizes any accepted question type spelling to its
// storage value. Input is matched case-insensitively with surrounding
// whitespace ignored.
func ParseQuestionType(s string) (QuestionType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if qt, ok := questionTypeSynonyms[key]; ok {
		return qt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidQuestionType, s)
}
