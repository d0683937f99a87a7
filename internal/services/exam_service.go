package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduprep/exam-service/internal/events"
	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/repositories"
	"github.com/eduprep/exam-service/internal/validator"
)

type examService struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
}

func NewExamService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.BusinessValidator, publisher events.EventPublisher) ExamService {
	return &examService{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, creatorID string) (*ExamResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	exam := &models.Exam{
		ID:        req.ID,
		Title:     req.Title,
		ExamType:  req.ExamType,
		Status:    models.ExamDraft,
		Duration:  req.Duration,
		CreatedBy: creatorID,
	}
	if exam.ID == "" {
		exam.ID = uuid.New().String()
	}
	if exam.ExamType == "" {
		exam.ExamType = models.ExamTypeMains
	}

	for i, q := range req.Questions {
		question := models.Question{
			ID:            q.ID,
			ExamID:        exam.ID,
			Order:         i,
			Type:          q.Type,
			Text:          q.Text,
			Image:         q.Image,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         q.Marks,
			NegativeMarks: q.NegativeMarks,
			Subject:       q.Subject,
		}
		if question.ID == "" {
			question.ID = uuid.New().String()
		}
		if question.Text == "" && question.Image == "" {
			return nil, NewValidationError("questions", fmt.Sprintf("question %d needs text or an image", i+1), nil)
		}
		exam.Questions = append(exam.Questions, question)
	}

	if errs := s.validator.ValidateExam(exam); len(errs) > 0 {
		return nil, errs
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Exam().Create(ctx, nil, exam)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("exam created",
		"exam_id", exam.ID,
		"questions", len(exam.Questions),
		"created_by", creatorID)

	return &ExamResponse{Exam: exam}, nil
}

func (s *examService) GetByID(ctx context.Context, id string) (*ExamResponse, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return &ExamResponse{Exam: exam}, nil
}

func (s *examService) GetForAttempt(ctx context.Context, id string) (*ExamResponse, error) {
	resp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.Status != models.ExamPublished {
		return nil, ErrExamNotPublished
	}
	if len(resp.Questions) == 0 {
		return nil, ErrExamHasNoQuestions
	}
	return resp, nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error) {
	exams, total, err := s.repo.Exam().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	size := filters.Limit
	if size <= 0 {
		size = len(exams)
	}
	page := 1
	if size > 0 {
		page = filters.Offset/size + 1
	}

	return &ExamListResponse{
		Exams: exams,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

func (s *examService) UpdateStatus(ctx context.Context, id string, req *UpdateStatusRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	if !isValidTransition(exam.Status, req.Status) {
		return ErrExamInvalidStatus
	}
	if req.Status == models.ExamPublished && len(exam.Questions) == 0 {
		return ErrExamHasNoQuestions
	}

	if err := s.repo.Exam().UpdateStatus(ctx, nil, id, req.Status); err != nil {
		return fmt.Errorf("failed to update exam status: %w", err)
	}

	s.publishStatusEvent(ctx, exam, req.Status)

	s.logger.Info("exam status updated",
		"exam_id", id,
		"from", exam.Status,
		"to", req.Status)
	return nil
}

func (s *examService) Delete(ctx context.Context, id string) error {
	_, total, err := s.repo.Result().GetByExam(ctx, nil, id, repositories.ResultFilters{Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check exam results: %w", err)
	}
	if total > 0 {
		return ErrExamNotDeletable
	}

	if err := s.repo.Exam().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("exam deleted", "exam_id", id)
	return nil
}

// isValidTransition encodes the Draft -> Published -> Archived lifecycle.
// Archived exams can be republished; nothing goes back to Draft.
func isValidTransition(from, to models.ExamStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.ExamDraft:
		return to == models.ExamPublished
	case models.ExamPublished:
		return to == models.ExamArchived
	case models.ExamArchived:
		return to == models.ExamPublished
	}
	return false
}

// publishStatusEvent is best-effort: a broker outage never fails the update.
func (s *examService) publishStatusEvent(ctx context.Context, exam *models.Exam, status models.ExamStatus) {
	if s.publisher == nil {
		return
	}

	var event *events.ExamEvent
	switch status {
	case models.ExamPublished:
		event = events.NewExamEvent(events.EventExamPublished, events.ExamPublishedEvent{
			ExamID:    exam.ID,
			ExamTitle: exam.Title,
			ExamType:  string(exam.ExamType),
			Duration:  exam.Duration,
			Questions: len(exam.Questions),
			CreatedBy: exam.CreatedBy,
		})
	case models.ExamArchived:
		event = events.NewExamEvent(events.EventExamArchived, events.ExamArchivedEvent{
			ExamID:     exam.ID,
			ExamTitle:  exam.Title,
			ArchivedAt: time.Now().UTC(),
		})
	default:
		return
	}

	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish exam status event",
			"exam_id", exam.ID,
			"status", status,
			"error", err)
	}
}
