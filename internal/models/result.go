package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExamResult is both the wire body of POST /exam-results and the stored row.
// Scores are computed client-side by the session engine; the service persists
// what it receives after shape validation.
type ExamResult struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    string `json:"examId" gorm:"not null;index;size:64" validate:"required"`
	StudentID string `json:"studentId" gorm:"index;size:255"`

	TotalQuestions int `json:"totalQuestions" gorm:"not null" validate:"required,min=1"`
	CorrectAnswers int `json:"correctAnswers" gorm:"not null" validate:"min=0"`
	WrongAnswers   int `json:"wrongAnswers" gorm:"not null" validate:"min=0"`
	Unattempted    int `json:"unattempted" gorm:"not null" validate:"min=0"`

	TotalMarks    float64 `json:"totalMarks" gorm:"not null"`
	ObtainedMarks float64 `json:"obtainedMarks" gorm:"not null"`

	// Percentage is obtained/total*100, 0 when total is 0. Deliberately not
	// clamped: negative marking can push it below zero.
	Percentage float64 `json:"percentage" gorm:"not null"`

	// TimeTaken is durationSeconds minus remaining seconds at submit.
	TimeTaken int `json:"timeTaken" gorm:"not null" validate:"min=0"`

	// SubjectWiseScore maps subject name to its SubjectScore breakdown.
	SubjectWiseScore datatypes.JSON `json:"subjectWiseScore" gorm:"type:jsonb"`

	// Answers is the raw question-id -> submitted-answer map, kept for review.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam Exam `json:"-" gorm:"foreignKey:ExamID;references:ID"`
}

// SubjectScore is the per-category aggregation used for review breakdowns.
type SubjectScore struct {
	CorrectCount  int     `json:"correctCount"`
	TotalCount    int     `json:"totalCount"`
	MarksObtained float64 `json:"marksObtained"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}
