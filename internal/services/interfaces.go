package services

import (
	"context"

	"gorm.io/datatypes"

	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

type CreateExamRequest struct {
	ID        string                  `json:"id" validate:"omitempty,max=64"`
	Title     string                  `json:"title" validate:"required,min=1,max=200"`
	ExamType  models.ExamType         `json:"examType" validate:"omitempty,exam_type"`
	Duration  int                     `json:"durationMinutes" validate:"required,exam_duration"`
	Questions []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	ID            string              `json:"id" validate:"omitempty,max=64"`
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Text          string              `json:"text,omitempty"`
	Image         string              `json:"image,omitempty" validate:"omitempty,max=500"`
	Options       datatypes.JSON      `json:"options,omitempty"`
	CorrectAnswer datatypes.JSON      `json:"correctAnswer" validate:"required"`
	Marks         float64             `json:"marks" validate:"required,gt=0,marks_range"`
	NegativeMarks float64             `json:"negativeMarks" validate:"gte=0"`
	Subject       string              `json:"subject" validate:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	Status models.ExamStatus `json:"status" validate:"required,oneof=Draft Published Archived"`
}

type ExamResponse struct {
	*models.Exam
}

type ExamListResponse struct {
	Exams []*models.Exam `json:"exams"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type ResultListResponse struct {
	Results []*models.ExamResult `json:"results"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	Size    int                  `json:"size"`
}

// ===== SERVICE INTERFACES =====

// ExamService owns exam lifecycle and the read side of the exam-taking flow.
type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, creatorID string) (*ExamResponse, error)
	GetByID(ctx context.Context, id string) (*ExamResponse, error)
	// GetForAttempt returns a published exam with its questions in display
	// order; this is the payload the session engine runs from.
	GetForAttempt(ctx context.Context, id string) (*ExamResponse, error)
	List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error)
	UpdateStatus(ctx context.Context, id string, req *UpdateStatusRequest) error
	Delete(ctx context.Context, id string) error
}

// ResultService persists client-computed results and serves review queries.
type ResultService interface {
	Submit(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error)
	GetByID(ctx context.Context, id uint) (*models.ExamResult, error)
	ListByExam(ctx context.Context, examID string, filters repositories.ResultFilters) (*ResultListResponse, error)
	ListByStudent(ctx context.Context, studentID string, filters repositories.ResultFilters) (*ResultListResponse, error)
	GetExamStats(ctx context.Context, examID string) (*repositories.ExamStats, error)
	// ExportResults renders every stored result for an exam as an XLSX sheet.
	ExportResults(ctx context.Context, examID string) ([]byte, error)
}

// ServiceManager provides access to all services with lifecycle management
type ServiceManager interface {
	Exam() ExamService
	Result() ResultService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
