package events

import (
	"time"
)

// EventType represents different types of exam lifecycle events
type EventType string

const (
	// Exam events
	EventExamPublished EventType = "exam.published"
	EventExamArchived  EventType = "exam.archived"

	// Result events
	EventExamCompleted EventType = "exam.completed"
)

// ExamEvent is the base event structure published to the exam topic
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ExamPublishedEvent fires when an exam moves from Draft to Published.
type ExamPublishedEvent struct {
	ExamID    string `json:"exam_id"`
	ExamTitle string `json:"exam_title"`
	ExamType  string `json:"exam_type"`
	Duration  int    `json:"duration"` // minutes
	Questions int    `json:"questions"`
	CreatedBy string `json:"created_by"`
}

// ExamArchivedEvent fires when an exam is taken out of circulation.
type ExamArchivedEvent struct {
	ExamID     string    `json:"exam_id"`
	ExamTitle  string    `json:"exam_title"`
	ArchivedAt time.Time `json:"archived_at"`
}

// ExamCompletedEvent fires when a result is stored for a finished attempt.
// Downstream consumers use it for notification and analytics pipelines.
type ExamCompletedEvent struct {
	ResultID       uint    `json:"result_id"`
	ExamID         string  `json:"exam_id"`
	StudentID      string  `json:"student_id,omitempty"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	WrongAnswers   int     `json:"wrong_answers"`
	Unattempted    int     `json:"unattempted"`
	ObtainedMarks  float64 `json:"obtained_marks"`
	TotalMarks     float64 `json:"total_marks"`
	Percentage     float64 `json:"percentage"`
	TimeTaken      int     `json:"time_taken"` // seconds
}
