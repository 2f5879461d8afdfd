package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/traincore/traincore-api/internal/domain"
)

func boolQuestion() *domain.QuizQuestion {
	return &domain.QuizQuestion{
		ID:    29,
		Text:  "Is the valve open?",
		Type:  domain.QuestionTypeBoolean,
		Score: 5,
		Answers: []domain.QuizAnswer{
			{ID: 37, QuestionID: 29, Text: "Yes", Correct: true},
			{ID: 38, QuestionID: 29, Text: "No"},
		},
	}
}

func TestEvaluateBoolean(t *testing.T) {
	t.Parallel()

	q := boolQuestion()

	t.Run("correct answer awards full score", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{37}})
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 5.0, result.ScoreAwarded)
	})

	t.Run("wrong answer awards zero", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{38}})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})

	t.Run("both answers selected awards zero", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{37, 38}})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})

	t.Run("empty selection awards zero", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})
}

func TestEvaluateCheckboxes(t *testing.T) {
	t.Parallel()

	q := &domain.QuizQuestion{
		ID:    50,
		Type:  domain.QuestionTypeCheckboxes,
		Score: 10,
		Answers: []domain.QuizAnswer{
			{ID: 1, Correct: true},
			{ID: 2, Correct: true},
			{ID: 3},
			{ID: 4},
		},
	}

	t.Run("exact set match is required", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{1, 2}})
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 10.0, result.ScoreAwarded)
	})

	t.Run("order does not matter", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{2, 1}})
		assert.True(t, result.IsCorrect)
	})

	t.Run("duplicates collapse before comparison", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{1, 1, 2}})
		assert.True(t, result.IsCorrect)
	})

	t.Run("subset awards zero, no partial credit", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{1}})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})

	t.Run("superset awards zero", func(t *testing.T) {
		t.Parallel()

		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{1, 2, 3}})
		assert.False(t, result.IsCorrect)
	})
}

func TestEvaluateNeverAutoScored(t *testing.T) {
	t.Parallel()

	t.Run("scale answers are recorded but not scored", func(t *testing.T) {
		t.Parallel()

		q := &domain.QuizQuestion{
			ID:          60,
			Type:        domain.QuestionTypeScale,
			Score:       5,
			ScaleConfig: json.RawMessage(`{"min":1,"max":10}`),
		}
		value := 7
		result := Evaluate(q, SubmittedAnswer{Value: &value})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})

	t.Run("text answers are recorded but not scored", func(t *testing.T) {
		t.Parallel()

		q := &domain.QuizQuestion{ID: 61, Type: domain.QuestionTypeText, Score: 5}
		text := "free form response"
		result := Evaluate(q, SubmittedAnswer{Text: &text})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})

	t.Run("unknown question type scores zero", func(t *testing.T) {
		t.Parallel()

		q := &domain.QuizQuestion{ID: 62, Type: domain.QuestionType("essay"), Score: 5}
		result := Evaluate(q, SubmittedAnswer{AnswerIDs: []int64{1}})
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.ScoreAwarded)
	})
}

func TestMatchesShape(t *testing.T) {
	t.Parallel()

	value := 7
	text := "hi"

	cases := []struct {
		name   string
		qtype  domain.QuestionType
		answer SubmittedAnswer
		want   bool
	}{
		{"boolean with answer ids", domain.QuestionTypeBoolean, SubmittedAnswer{AnswerIDs: []int64{37}}, true},
		{"boolean with text", domain.QuestionTypeBoolean, SubmittedAnswer{Text: &text}, false},
		{"choice with bare value", domain.QuestionTypeChoice, SubmittedAnswer{Value: &value}, false},
		{"checkboxes with empty selection", domain.QuestionTypeCheckboxes, SubmittedAnswer{}, true},
		{"scale with value", domain.QuestionTypeScale, SubmittedAnswer{Value: &value}, true},
		{"scale with answer ids", domain.QuestionTypeScale, SubmittedAnswer{AnswerIDs: []int64{1}}, false},
		{"text with text", domain.QuestionTypeText, SubmittedAnswer{Text: &text}, true},
		{"text with value", domain.QuestionTypeText, SubmittedAnswer{Value: &value}, false},
		{"unanswered matches any type", domain.QuestionTypeText, SubmittedAnswer{}, true},
		{"unknown type accepts anything", domain.QuestionType("essay"), SubmittedAnswer{Value: &value}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			q := &domain.QuizQuestion{ID: 70, Type: tc.qtype, Score: 5}
			assert.Equal(t, tc.want, MatchesShape(q, tc.answer))
		})
	}
}
