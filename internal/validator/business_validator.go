package validator

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/eduprep/exam-service/internal/errors"
	"github.com/eduprep/exam-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) apperrors.ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return nil
}

// ValidateExam validates an exam payload before it is stored or served:
// struct tags first, then the cross-field rules tags cannot express.
func (bv *BusinessValidator) ValidateExam(exam *models.Exam) apperrors.ValidationErrors {
	errs := bv.Validate(exam)

	seen := make(map[string]struct{}, len(exam.Questions))
	for _, q := range exam.Questions {
		if _, dup := seen[q.ID]; dup {
			errs = append(errs, *apperrors.NewValidationError("questions", "duplicate question id", q.ID))
		}
		seen[q.ID] = struct{}{}

		errs = append(errs, bv.validateQuestionRules(q)...)
	}

	return errs
}

func (bv *BusinessValidator) validateQuestionRules(q models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(q.CorrectAnswer) == 0 {
		errs = append(errs, *apperrors.NewValidationError("correctAnswer", "is required", nil))
		return errs
	}

	var raw interface{}
	if err := json.Unmarshal(q.CorrectAnswer, &raw); err != nil {
		errs = append(errs, *apperrors.NewValidationError("correctAnswer", "must be valid JSON", string(q.CorrectAnswer)))
		return errs
	}

	_, isArray := raw.([]interface{})
	if q.Type == models.MultiChoice && !isArray {
		errs = append(errs, *apperrors.NewValidationError("correctAnswer", "must be an array for multi-choice questions", raw))
	}
	if q.Type != models.MultiChoice && isArray {
		errs = append(errs, *apperrors.NewValidationError("correctAnswer", "must be a single value for this question type", raw))
	}

	if q.NegativeMarks > q.Marks {
		errs = append(errs, *apperrors.NewValidationError("negativeMarks", "must not exceed the question's marks", q.NegativeMarks))
	}

	return errs
}

// ValidateResult validates a submitted exam result body.
func (bv *BusinessValidator) ValidateResult(result *models.ExamResult) apperrors.ValidationErrors {
	errs := bv.Validate(result)

	if result.CorrectAnswers+result.WrongAnswers+result.Unattempted != result.TotalQuestions {
		errs = append(errs, *apperrors.NewValidationError(
			"totalQuestions",
			"correct, wrong and unattempted counts must add up to the question count",
			result.TotalQuestions))
	}

	return errs
}

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("question_type", validateQuestionType)
	bv.validate.RegisterValidation("exam_type", validateExamType)
	bv.validate.RegisterValidation("exam_status", validateExamStatus)
	bv.validate.RegisterValidation("exam_duration", validateExamDuration)
	bv.validate.RegisterValidation("marks_range", validateMarksRange)

	// Report JSON field names so API clients see the names they sent
	bv.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.SingleChoice, models.MultiChoice, models.Integer:
		return true
	}
	return false
}

func validateExamType(fl validator.FieldLevel) bool {
	switch models.ExamType(fl.Field().String()) {
	case models.ExamTypeMains, models.ExamTypeAdvanced:
		return true
	}
	return false
}

func validateExamStatus(fl validator.FieldLevel) bool {
	switch models.ExamStatus(fl.Field().String()) {
	case models.ExamDraft, models.ExamPublished, models.ExamArchived:
		return true
	}
	return false
}

func validateExamDuration(fl validator.FieldLevel) bool {
	minutes := fl.Field().Int()
	return minutes >= 1 && minutes <= 600
}

func validateMarksRange(fl validator.FieldLevel) bool {
	marks := fl.Field().Float()
	return marks >= 0 && marks <= 100
}
