package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeStripsAnswerKeys(t *testing.T) {
	t.Parallel()

	m, err := NewMaterial("Quiz", "", MaterialTypeQuiz)
	require.NoError(t, err)
	m.Subcomponents.Questions = []QuizQuestion{
		{
			ID:   29,
			Text: "Is the valve open?",
			Type: QuestionTypeBoolean,
			Answers: []QuizAnswer{
				{ID: 37, Text: "Yes", Correct: true},
				{ID: 38, Text: "No"},
			},
		},
	}

	t.Run("learner view omits correct flags", func(t *testing.T) {
		t.Parallel()

		wire := m.Serialize(false)
		require.Len(t, wire.Subcomponents.Questions, 1)
		for _, a := range wire.Subcomponents.Questions[0].Answers {
			assert.Nil(t, a.Correct, "answer %d must not expose the key", a.ID)
		}
	})

	t.Run("author view keeps correct flags", func(t *testing.T) {
		t.Parallel()

		wire := m.Serialize(true)
		require.Len(t, wire.Subcomponents.Questions, 1)
		answers := wire.Subcomponents.Questions[0].Answers
		require.Len(t, answers, 2)
		require.NotNil(t, answers[0].Correct)
		assert.True(t, *answers[0].Correct)
		require.NotNil(t, answers[1].Correct)
		assert.False(t, *answers[1].Correct)
	})

	t.Run("question type serializes as display name", func(t *testing.T) {
		t.Parallel()

		wire := m.Serialize(false)
		assert.Equal(t, "True or False", wire.Subcomponents.Questions[0].Type)
	})
}
