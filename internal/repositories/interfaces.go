package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/eduprep/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	Status    *models.ExamStatus `json:"status"`
	ExamType  *models.ExamType   `json:"exam_type"`
	CreatedBy *string            `json:"created_by"`
	DateFrom  *time.Time         `json:"date_from"`
	DateTo    *time.Time         `json:"date_to"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	ExamID    *string    `json:"exam_id"`
	StudentID *string    `json:"student_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

// ExamStats aggregates stored results for one exam.
type ExamStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	AveragePercentage float64 `json:"average_percentage"`
	HighestPercentage float64 `json:"highest_percentage"`
	LowestPercentage  float64 `json:"lowest_percentage"`
	AverageTimeTaken  int     `json:"average_time_taken"`
}

// ===== REPOSITORY INTERFACES =====

type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Exam, error)
	// GetByIDWithQuestions loads the exam and its questions in display order.
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Exam, error)
	List(ctx context.Context, tx *gorm.DB, filters ExamFilters) ([]*models.Exam, int64, error)
	Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.ExamStatus) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamResult, error)
	List(ctx context.Context, tx *gorm.DB, filters ResultFilters) ([]*models.ExamResult, int64, error)
	GetByExam(ctx context.Context, tx *gorm.DB, examID string, filters ResultFilters) ([]*models.ExamResult, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters ResultFilters) ([]*models.ExamResult, int64, error)
	GetExamStats(ctx context.Context, tx *gorm.DB, examID string) (*ExamStats, error)
}

// IsNotFoundError reports whether err is a record-not-found from the store
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
