package session

import (
	"github.com/eduprep/exam-service/internal/models"
)

// Evaluation is the scoring outcome for one answered question.
type Evaluation struct {
	Attempted  bool
	Correct    bool
	MarksDelta float64
}

// Evaluate determines correctness and marks contribution for a single
// question. An answer that normalizes to empty counts as unattempted, never
// as wrong, so whitespace-only input cannot trigger negative marking.
// Comparison is exact textual equality after normalization: case-sensitive,
// no numeric tolerance ("42" does not match "42.0").
func Evaluate(q models.Question, answer models.OptionValue) Evaluation {
	if q.Type == models.MultiChoice {
		return evaluateMultiChoice(q, answer)
	}

	user := Normalize(answer)
	if user == "" {
		return Evaluation{}
	}

	correct := Normalize(models.DecodeOptionValue(q.CorrectAnswer))
	if user == correct {
		return Evaluation{Attempted: true, Correct: true, MarksDelta: q.Marks}
	}
	return Evaluation{Attempted: true, MarksDelta: -q.NegativeMarks}
}

func evaluateMultiChoice(q models.Question, answer models.OptionValue) Evaluation {
	userSet := NormalizeSet(answer)
	if len(userSet) == 0 {
		return Evaluation{}
	}

	correctSet := NormalizeSet(models.DecodeOptionValue(q.CorrectAnswer))

	// Mismatched cardinality short-circuits; duplicates already collapsed.
	if len(userSet) != len(correctSet) {
		return Evaluation{Attempted: true, MarksDelta: -q.NegativeMarks}
	}
	for member := range userSet {
		if _, ok := correctSet[member]; !ok {
			return Evaluation{Attempted: true, MarksDelta: -q.NegativeMarks}
		}
	}
	return Evaluation{Attempted: true, Correct: true, MarksDelta: q.Marks}
}
