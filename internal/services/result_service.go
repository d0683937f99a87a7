package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/eduprep/exam-service/internal/events"
	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/repositories"
	"github.com/eduprep/exam-service/internal/validator"
)

type resultService struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
}

func NewResultService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.BusinessValidator, publisher events.EventPublisher) ResultService {
	return &resultService{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Submit stores a client-computed result. Scoring happened on the client; the
// service validates shape and the count invariant, then persists as-is.
func (s *resultService) Submit(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error) {
	if errs := s.validator.ValidateResult(result); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.Exam().ExistsByID(ctx, nil, result.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam existence: %w", err)
	}
	if !exists {
		return nil, ErrResultExamMismatch
	}

	if err := s.repo.Result().Create(ctx, nil, result); err != nil {
		return nil, fmt.Errorf("failed to store exam result: %w", err)
	}

	s.publishCompletedEvent(ctx, result)

	s.logger.Info("exam result stored",
		"result_id", result.ID,
		"exam_id", result.ExamID,
		"percentage", result.Percentage)

	return result, nil
}

func (s *resultService) GetByID(ctx context.Context, id uint) (*models.ExamResult, error) {
	result, err := s.repo.Result().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get exam result: %w", err)
	}
	return result, nil
}

func (s *resultService) ListByExam(ctx context.Context, examID string, filters repositories.ResultFilters) (*ResultListResponse, error) {
	results, total, err := s.repo.Result().GetByExam(ctx, nil, examID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exam results: %w", err)
	}
	return newResultListResponse(results, total, filters), nil
}

func (s *resultService) ListByStudent(ctx context.Context, studentID string, filters repositories.ResultFilters) (*ResultListResponse, error) {
	results, total, err := s.repo.Result().GetByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list student results: %w", err)
	}
	return newResultListResponse(results, total, filters), nil
}

func (s *resultService) GetExamStats(ctx context.Context, examID string) (*repositories.ExamStats, error) {
	stats, err := s.repo.Result().GetExamStats(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam stats: %w", err)
	}
	return stats, nil
}

// ExportResults renders the stored results for one exam as an XLSX workbook.
func (s *resultService) ExportResults(ctx context.Context, examID string) ([]byte, error) {
	exists, err := s.repo.Exam().ExistsByID(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam existence: %w", err)
	}
	if !exists {
		return nil, ErrExamNotFound
	}

	results, _, err := s.repo.Result().GetByExam(ctx, nil, examID, repositories.ResultFilters{
		Limit:     100,
		SortBy:    "percentage",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get exam results: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Student ID", "Total Questions", "Correct", "Wrong", "Unattempted",
		"Obtained Marks", "Total Marks", "Percentage", "Time Taken (minutes)", "Submitted At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, result := range results {
		row := []interface{}{
			result.StudentID,
			result.TotalQuestions,
			result.CorrectAnswers,
			result.WrongAnswers,
			result.Unattempted,
			result.ObtainedMarks,
			result.TotalMarks,
			result.Percentage,
			result.TimeTaken / 60,
			result.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func newResultListResponse(results []*models.ExamResult, total int64, filters repositories.ResultFilters) *ResultListResponse {
	size := filters.Limit
	if size <= 0 {
		size = len(results)
	}
	page := 1
	if size > 0 {
		page = filters.Offset/size + 1
	}
	return &ResultListResponse{
		Results: results,
		Total:   total,
		Page:    page,
		Size:    size,
	}
}

// publishCompletedEvent is best-effort, matching the client's save semantics.
func (s *resultService) publishCompletedEvent(ctx context.Context, result *models.ExamResult) {
	if s.publisher == nil {
		return
	}

	event := events.NewExamEvent(events.EventExamCompleted, events.ExamCompletedEvent{
		ResultID:       result.ID,
		ExamID:         result.ExamID,
		StudentID:      result.StudentID,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		WrongAnswers:   result.WrongAnswers,
		Unattempted:    result.Unattempted,
		ObtainedMarks:  result.ObtainedMarks,
		TotalMarks:     result.TotalMarks,
		Percentage:     result.Percentage,
		TimeTaken:      result.TimeTaken,
	})

	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish exam completed event",
			"exam_id", result.ExamID,
			"error", err)
	}
}
