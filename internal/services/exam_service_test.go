package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	eduevents "github.com/eduprep/exam-service/internal/events"
	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/validator"
)

func testExamService(t *testing.T) (ExamService, *fakeRepository, *eduevents.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepository()
	publisher := eduevents.NewMockEventPublisher(logger)
	svc := NewExamService(nil, repo, logger, validator.NewBusinessValidator(), publisher)
	return svc, repo, publisher
}

func createRequest() *CreateExamRequest {
	return &CreateExamRequest{
		Title:    "Mock Test 1",
		ExamType: models.ExamTypeMains,
		Duration: 180,
		Questions: []CreateQuestionRequest{
			{Type: models.SingleChoice, Text: "Q1?", CorrectAnswer: []byte(`"2x"`), Marks: 4, NegativeMarks: 1, Subject: models.SubjectMathematics},
			{Type: models.Integer, Text: "Q2?", CorrectAnswer: []byte(`"7"`), Marks: 4, NegativeMarks: 1, Subject: models.SubjectPhysics},
		},
	}
}

func TestCreateExam(t *testing.T) {
	svc, repo, _ := testExamService(t)

	resp, err := svc.Create(context.Background(), createRequest(), "teacher-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected a generated exam ID")
	}
	if resp.Status != models.ExamDraft {
		t.Errorf("new exam status = %s, want %s", resp.Status, models.ExamDraft)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(resp.Questions))
	}
	if resp.Questions[0].Order != 0 || resp.Questions[1].Order != 1 {
		t.Error("questions must keep their request order")
	}
	if _, ok := repo.exams[resp.ID]; !ok {
		t.Error("exam was not stored")
	}
}

func TestCreateExamValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateExamRequest)
	}{
		{name: "missing title", mutate: func(r *CreateExamRequest) { r.Title = "" }},
		{name: "no questions", mutate: func(r *CreateExamRequest) { r.Questions = nil }},
		{name: "zero duration", mutate: func(r *CreateExamRequest) { r.Duration = 0 }},
		{name: "question without text or image", mutate: func(r *CreateExamRequest) { r.Questions[0].Text = "" }},
		{name: "zero marks", mutate: func(r *CreateExamRequest) { r.Questions[0].Marks = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := testExamService(t)
			req := createRequest()
			tt.mutate(req)
			if _, err := svc.Create(context.Background(), req, "teacher-1"); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestGetForAttemptRequiresPublished(t *testing.T) {
	svc, _, _ := testExamService(t)

	resp, err := svc.Create(context.Background(), createRequest(), "teacher-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err := svc.GetForAttempt(context.Background(), resp.ID); !errors.Is(err, ErrExamNotPublished) {
		t.Errorf("GetForAttempt() on draft = %v, want ErrExamNotPublished", err)
	}

	if err := svc.UpdateStatus(context.Background(), resp.ID, &UpdateStatusRequest{Status: models.ExamPublished}); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	got, err := svc.GetForAttempt(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("GetForAttempt() failed: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Errorf("expected the full question payload, got %d questions", len(got.Questions))
	}
}

func TestGetForAttemptUnknownExam(t *testing.T) {
	svc, _, _ := testExamService(t)

	if _, err := svc.GetForAttempt(context.Background(), "missing"); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("GetForAttempt() = %v, want ErrExamNotFound", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ExamStatus
		to      models.ExamStatus
		allowed bool
	}{
		{name: "draft to published", from: models.ExamDraft, to: models.ExamPublished, allowed: true},
		{name: "published to archived", from: models.ExamPublished, to: models.ExamArchived, allowed: true},
		{name: "archived to published", from: models.ExamArchived, to: models.ExamPublished, allowed: true},
		{name: "published to draft", from: models.ExamPublished, to: models.ExamDraft, allowed: false},
		{name: "draft to archived", from: models.ExamDraft, to: models.ExamArchived, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := testExamService(t)
			exam := storedExam()
			exam.Status = tt.from
			exam.Questions = []models.Question{{ID: "q1", Type: models.Integer, Text: "Q?", CorrectAnswer: []byte(`"1"`), Marks: 1}}
			repo.exams[exam.ID] = exam

			err := svc.UpdateStatus(context.Background(), exam.ID, &UpdateStatusRequest{Status: tt.to})
			if tt.allowed && err != nil {
				t.Errorf("UpdateStatus() = %v, want nil", err)
			}
			if !tt.allowed && !errors.Is(err, ErrExamInvalidStatus) {
				t.Errorf("UpdateStatus() = %v, want ErrExamInvalidStatus", err)
			}
		})
	}
}

func TestPublishEmptyExamRejected(t *testing.T) {
	svc, repo, _ := testExamService(t)
	exam := storedExam()
	exam.Status = models.ExamDraft
	repo.exams[exam.ID] = exam

	err := svc.UpdateStatus(context.Background(), exam.ID, &UpdateStatusRequest{Status: models.ExamPublished})
	if !errors.Is(err, ErrExamHasNoQuestions) {
		t.Errorf("UpdateStatus() = %v, want ErrExamHasNoQuestions", err)
	}
}

func TestPublishFiresEvent(t *testing.T) {
	svc, repo, publisher := testExamService(t)
	exam := storedExam()
	exam.Status = models.ExamDraft
	exam.Questions = []models.Question{{ID: "q1", Type: models.Integer, Text: "Q?", CorrectAnswer: []byte(`"1"`), Marks: 1}}
	repo.exams[exam.ID] = exam

	if err := svc.UpdateStatus(context.Background(), exam.ID, &UpdateStatusRequest{Status: models.ExamPublished}); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != eduevents.EventExamPublished {
		t.Errorf("expected one exam.published event, got %v", published)
	}
}

func TestDeleteExamWithResultsRejected(t *testing.T) {
	svc, repo, _ := testExamService(t)
	repo.exams["exam-1"] = storedExam()
	repo.results = append(repo.results, &models.ExamResult{ID: 1, ExamID: "exam-1"})

	if err := svc.Delete(context.Background(), "exam-1"); !errors.Is(err, ErrExamNotDeletable) {
		t.Errorf("Delete() = %v, want ErrExamNotDeletable", err)
	}
}

func TestDeleteExam(t *testing.T) {
	svc, repo, _ := testExamService(t)
	repo.exams["exam-1"] = storedExam()

	if err := svc.Delete(context.Background(), "exam-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok := repo.exams["exam-1"]; ok {
		t.Error("exam still stored after delete")
	}
}
