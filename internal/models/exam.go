package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamType string

const (
	ExamTypeMains    ExamType = "mains"
	ExamTypeAdvanced ExamType = "advanced"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	Integer      QuestionType = "integer"
)

// Default subject categories used for score aggregation. Exams may carry
// other subject strings; these only seed the breakdown ordering.
const (
	SubjectPhysics     = "Physics"
	SubjectChemistry   = "Chemistry"
	SubjectMathematics = "Mathematics"
)

var DefaultSubjects = []string{SubjectPhysics, SubjectChemistry, SubjectMathematics}

type ExamStatus string

const (
	ExamDraft     ExamStatus = "Draft"
	ExamPublished ExamStatus = "Published"
	ExamArchived  ExamStatus = "Archived"
)

type Exam struct {
	ID       string     `json:"id" gorm:"primaryKey;size:64"`
	Title    string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ExamType ExamType   `json:"examType" gorm:"default:mains;index" validate:"omitempty,oneof=mains advanced"`
	Status   ExamStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`

	// Duration is in minutes; the session countdown runs from Duration*60 seconds.
	Duration int `json:"durationMinutes" gorm:"not null" validate:"required,min=1,max=600"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations. Question order is significant: it is the display and
	// navigation order for the session.
	Questions []Question `json:"questions" gorm:"foreignKey:ExamID;references:ID"`

	// Computed fields (not stored)
	QuestionsCount int     `json:"questions_count" gorm:"-"`
	TotalMarks     float64 `json:"total_marks" gorm:"-"`
}

type Question struct {
	ID     string `json:"id" gorm:"primaryKey;size:64"`
	ExamID string `json:"exam_id" gorm:"not null;index;size:64"`
	Order  int    `json:"order" gorm:"not null;default:0"`

	Type QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`

	// At least one of Text/Image must be present. Exam creation enforces
	// this; the session controller does not re-validate.
	Text  string `json:"text,omitempty" gorm:"type:text"`
	Image string `json:"image,omitempty" gorm:"size:500"`

	// Options are present for choice types only; stored as JSONB because the
	// upstream platform delivers options in several shapes (plain strings,
	// labeled objects). Decoded into OptionValue at the boundary.
	Options datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`

	// CorrectAnswer holds one representation appropriate to Type: a single
	// option value, a collection of option values, or a numeric-as-text value.
	CorrectAnswer datatypes.JSON `json:"correctAnswer" gorm:"type:jsonb"`

	Marks         float64 `json:"marks" gorm:"not null" validate:"required,gt=0"`
	NegativeMarks float64 `json:"negativeMarks" gorm:"not null;default:0" validate:"gte=0"`
	Subject       string  `json:"subject" gorm:"size:50;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Exam) TableName() string {
	return "exams"
}

func (Question) TableName() string {
	return "exam_questions"
}
