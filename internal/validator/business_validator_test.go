package validator

import (
	"testing"

	"github.com/eduprep/exam-service/internal/models"
)

func validExam() *models.Exam {
	return &models.Exam{
		ID:       "exam-1",
		Title:    "Mock Test 1",
		ExamType: models.ExamTypeMains,
		Duration: 180,
		Questions: []models.Question{
			{ID: "q1", ExamID: "exam-1", Type: models.SingleChoice, Text: "Q1?", CorrectAnswer: []byte(`"A"`), Marks: 4, NegativeMarks: 1},
			{ID: "q2", ExamID: "exam-1", Type: models.MultiChoice, Text: "Q2?", CorrectAnswer: []byte(`["A","C"]`), Marks: 4, NegativeMarks: 1},
		},
	}
}

func TestValidateExamAcceptsValidExam(t *testing.T) {
	bv := NewBusinessValidator()
	if errs := bv.ValidateExam(validExam()); len(errs) != 0 {
		t.Errorf("expected no errors for a valid exam, got %v", errs)
	}
}

func TestValidateExamRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Exam)
	}{
		{name: "missing title", mutate: func(e *models.Exam) { e.Title = "" }},
		{name: "zero duration", mutate: func(e *models.Exam) { e.Duration = 0 }},
		{name: "duplicate question ids", mutate: func(e *models.Exam) { e.Questions[1].ID = "q1" }},
		{name: "missing correct answer", mutate: func(e *models.Exam) { e.Questions[0].CorrectAnswer = nil }},
		{name: "scalar answer on multi-choice", mutate: func(e *models.Exam) { e.Questions[1].CorrectAnswer = []byte(`"A"`) }},
		{name: "array answer on single-choice", mutate: func(e *models.Exam) { e.Questions[0].CorrectAnswer = []byte(`["A"]`) }},
		{name: "negative marks exceed marks", mutate: func(e *models.Exam) { e.Questions[0].NegativeMarks = 10 }},
		{name: "unknown question type", mutate: func(e *models.Exam) { e.Questions[0].Type = "essay" }},
	}

	bv := NewBusinessValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam := validExam()
			tt.mutate(exam)
			if errs := bv.ValidateExam(exam); len(errs) == 0 {
				t.Error("expected validation errors, got none")
			}
		})
	}
}

func TestValidateResultCountInvariant(t *testing.T) {
	bv := NewBusinessValidator()

	result := &models.ExamResult{
		ExamID:         "exam-1",
		TotalQuestions: 3,
		CorrectAnswers: 2,
		WrongAnswers:   1,
		Unattempted:    0,
	}
	if errs := bv.ValidateResult(result); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	result.Unattempted = 2
	if errs := bv.ValidateResult(result); len(errs) == 0 {
		t.Error("expected count invariant violation to be reported")
	}
}

func TestValidateResultAllowsNegativePercentage(t *testing.T) {
	bv := NewBusinessValidator()
	result := &models.ExamResult{
		ExamID:         "exam-1",
		TotalQuestions: 2,
		WrongAnswers:   2,
		ObtainedMarks:  -2,
		Percentage:     -25,
	}
	if errs := bv.ValidateResult(result); len(errs) != 0 {
		t.Errorf("negative marking results must validate, got %v", errs)
	}
}
