// Package evaluation implements per-question answer scoring for quiz
// submissions. Evaluation is pure: no storage, no side effects, a question
// and a submitted answer in, a verdict out.
package evaluation

import (
	"github.com/traincore/traincore-api/internal/domain"
)

// SubmittedAnswer is the normalized shape of one submitted answer. Exactly
// one of the three fields is expected to be populated, matching the
// question's type; MatchesShape reports violations before evaluation.
type SubmittedAnswer struct {
	AnswerIDs []int64
	Value     *int
	Text      *string
}

// MatchesShape reports whether the answer carries the field the question's
// type reads. Selection types read AnswerIDs, scale reads Value, text reads
// Text. An answer with every field empty matches any type (unanswered is not
// a shape violation), and unrecognized types accept anything since they are
// never auto-scored.
func MatchesShape(q *domain.QuizQuestion, answer SubmittedAnswer) bool {
	switch q.Type {
	case domain.QuestionTypeBoolean, domain.QuestionTypeChoice, domain.QuestionTypeCheckboxes:
		return len(answer.AnswerIDs) > 0 || (answer.Value == nil && answer.Text == nil)
	case domain.QuestionTypeScale:
		return answer.Value != nil || (len(answer.AnswerIDs) == 0 && answer.Text == nil)
	case domain.QuestionTypeText:
		return answer.Text != nil || (len(answer.AnswerIDs) == 0 && answer.Value == nil)
	default:
		return true
	}
}

// Result is the verdict for a single question.
type Result struct {
	ScoreAwarded float64
	IsCorrect    bool
}

// Evaluate scores one submitted answer against its question.
//
// Rules by question type:
//   - boolean, choice, checkboxes: correct iff the submitted answer-id set is
//     exactly the set of ids flagged correct. No subset or superset credit.
//     A correct answer awards the question's full score, anything else zero.
//   - scale: no correctness concept; score is always zero. Scale answers are
//     informational only.
//   - text and any unrecognized type: zero score, not correct. Free text is
//     reserved for manual grading and never auto-scored.
func Evaluate(q *domain.QuizQuestion, answer SubmittedAnswer) Result {
	switch q.Type {
	case domain.QuestionTypeBoolean, domain.QuestionTypeChoice, domain.QuestionTypeCheckboxes:
		if answerSetMatches(q.CorrectAnswerIDs(), answer.AnswerIDs) {
			return Result{ScoreAwarded: q.Score, IsCorrect: true}
		}
		return Result{}
	case domain.QuestionTypeScale:
		return Result{}
	default:
		// text and anything unrecognized
		return Result{}
	}
}

// answerSetMatches reports whether the submitted ids form exactly the correct
// set. Duplicate submitted ids collapse; an empty correct set only matches an
// empty submission.
func answerSetMatches(correct map[int64]struct{}, submitted []int64) bool {
	seen := make(map[int64]struct{}, len(submitted))
	for _, id := range submitted {
		if _, ok := correct[id]; !ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return len(seen) == len(correct)
}
