package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionTypeDisplayName(t *testing.T) {
	t.Parallel()

	cases := map[QuestionType]string{
		QuestionTypeText:       "Open",
		QuestionTypeBoolean:    "True or False",
		QuestionTypeChoice:     "Multiple choice",
		QuestionTypeCheckboxes: "Selection checkboxes",
		QuestionTypeScale:      "Scale",
	}
	for qt, want := range cases {
		assert.Equal(t, want, qt.DisplayName())
	}

	// Unknown types pass through untouched rather than failing the render.
	assert.Equal(t, "mystery", QuestionType("mystery").DisplayName())
}

func TestParseQuestionType(t *testing.T) {
	t.Parallel()

	cases := map[string]QuestionType{
		"boolean":              QuestionTypeBoolean,
		"True or False":        QuestionTypeBoolean,
		"yes/no":               QuestionTypeBoolean,
		"choice":               QuestionTypeChoice,
		"Multiple choice":      QuestionTypeChoice,
		"single choice":        QuestionTypeChoice,
		"radio":                QuestionTypeChoice,
		"checkboxes":           QuestionTypeCheckboxes,
		"Selection checkboxes": QuestionTypeCheckboxes,
		"checkbox":             QuestionTypeCheckboxes,
		"scale":                QuestionTypeScale,
		"likert":               QuestionTypeScale,
		"text":                 QuestionTypeText,
		"Open":                 QuestionTypeText,
		"  BOOLEAN  ":          QuestionTypeBoolean, // case and whitespace insensitive
	}
	for input, want := range cases {
		got, err := ParseQuestionType(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseQuestionType("essay")
	assert.ErrorIs(t, err, ErrInvalidQuestionType)
}

func TestNormalizeQuestionTypes(t *testing.T) {
	t.Parallel()

	s := Subcomponents{Questions: []QuizQuestion{
		{ID: 1, Type: "True or False"},
		{ID: 2, Type: "Multi select"},
		{ID: 3, Type: "BOOLEAN"},
		{ID: 4, Type: QuestionTypeScale},
		{ID: 5, Type: "essay"},
	}}
	s.NormalizeQuestionTypes()

	assert.Equal(t, QuestionTypeBoolean, s.Questions[0].Type)
	assert.Equal(t, QuestionTypeCheckboxes, s.Questions[1].Type)
	assert.Equal(t, QuestionTypeBoolean, s.Questions[2].Type)
	assert.Equal(t, QuestionTypeScale, s.Questions[3].Type)
	// Unrecognized spellings stay put so validation can name them.
	assert.Equal(t, QuestionType("essay"), s.Questions[4].Type)
}
