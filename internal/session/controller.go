package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/eduprep/exam-service/internal/models"
)

type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrNoQuestions     = errors.New("exam has no questions")
	ErrNotInProgress   = errors.New("session is not in progress")
	ErrIndexOutOfRange = errors.New("question index out of range")
)

// ExamSource fetches the full exam payload at session start.
type ExamSource interface {
	FetchExam(ctx context.Context, examID string) (*models.Exam, error)
}

// ResultSink receives the computed result. Saving is best-effort: a sink
// error is surfaced in the Outcome but never blocks completion.
type ResultSink interface {
	SaveResult(ctx context.Context, result *models.ExamResult) error
}

// Outcome is what the session hands to OnComplete: the computed result plus
// the explicit save outcome, so the host can warn the user instead of the
// failure disappearing into a log line.
type Outcome struct {
	Result  *models.ExamResult
	Saved   bool
	SaveErr error
}

// Config wires one exam attempt.
type Config struct {
	ExamID    string
	StudentID string
	Source    ExamSource
	Sink      ResultSink // optional
	Logger    *slog.Logger

	// OnComplete fires exactly once per session, on submit (user or timer).
	OnComplete func(*Outcome)
}

// Session owns all mutable state of one exam attempt and serializes every
// transition behind one mutex. The only correctness-sensitive race in the
// engine is the countdown expiry against a user submit; the state guard in
// submit resolves it, whichever path gets there first wins and the loser is
// a no-op.
type Session struct {
	mu sync.Mutex

	cfg   Config
	state State
	exam  *models.Exam

	current   int
	answers   map[string]models.OptionValue
	flagged   map[int]struct{}
	countdown *Countdown
	duration  int // seconds

	outcome *Outcome
}

func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		cfg:     cfg,
		state:   StateLoading,
		answers: make(map[string]models.OptionValue),
		flagged: make(map[int]struct{}),
	}
}

// Load fetches the exam and moves the session into InProgress, starting the
// countdown. A fetch failure or an empty question list is terminal.
func (s *Session) Load(ctx context.Context) error {
	exam, err := s.cfg.Source.FetchExam(ctx, s.cfg.ExamID)
	if err != nil {
		s.fail()
		return fmt.Errorf("failed to fetch exam %s: %w", s.cfg.ExamID, err)
	}
	if exam == nil {
		s.fail()
		return ErrExamNotFound
	}
	if len(exam.Questions) == 0 {
		s.fail()
		return ErrNoQuestions
	}

	s.mu.Lock()
	s.exam = exam
	s.duration = exam.Duration * 60
	s.countdown = NewCountdown(s.duration, s.onExpire)
	s.state = StateInProgress
	s.mu.Unlock()

	s.countdown.Start()

	s.cfg.Logger.Info("exam session started",
		"exam_id", exam.ID,
		"questions", len(exam.Questions),
		"duration_seconds", s.duration)
	return nil
}

func (s *Session) fail() {
	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Remaining returns the seconds left on the session clock.
func (s *Session) Remaining() int {
	s.mu.Lock()
	cd := s.countdown
	s.mu.Unlock()
	if cd == nil {
		return 0
	}
	return cd.Remaining()
}

// SetAnswer records or overwrites the answer for a question. Entries are
// never removed; scoring is deferred to submit time.
func (s *Session) SetAnswer(questionID string, value models.OptionValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	s.answers[questionID] = value
	return nil
}

// ToggleFlag marks or unmarks a question for review. Advisory only: flags
// never affect scoring.
func (s *Session) ToggleFlag(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if index < 0 || index >= len(s.exam.Questions) {
		return ErrIndexOutOfRange
	}
	if _, ok := s.flagged[index]; ok {
		delete(s.flagged, index)
	} else {
		s.flagged[index] = struct{}{}
	}
	return nil
}

func (s *Session) IsFlagged(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.flagged[index]
	return ok
}

// GoTo moves the cursor, clamping out-of-range targets so currentIndex can
// never be corrupted.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.exam.Questions)-1 {
		index = len(s.exam.Questions) - 1
	}
	s.current = index
	return nil
}

// onExpire is the countdown's zero-tick callback: an auto-submit.
func (s *Session) onExpire() {
	s.cfg.Logger.Info("exam time expired, auto-submitting", "exam_id", s.cfg.ExamID)
	s.Submit(context.Background())
}

// Submit transitions InProgress -> Submitting -> Done: computes the result
// once, best-effort saves it, and fires OnComplete exactly once. Idempotent:
// a second call, from either the user or the expiring countdown, is a no-op.
func (s *Session) Submit(ctx context.Context) *Outcome {
	s.mu.Lock()
	if s.state != StateInProgress {
		out := s.outcome
		s.mu.Unlock()
		return out
	}
	s.state = StateSubmitting
	remaining := s.countdown.Remaining()
	result := s.buildResult(remaining)
	s.mu.Unlock()

	s.countdown.Stop()

	outcome := &Outcome{Result: result, Saved: false}
	if s.cfg.Sink != nil {
		if err := s.cfg.Sink.SaveResult(ctx, result); err != nil {
			// Best-effort save: completion is never blocked on backend
			// availability. The failure travels in the Outcome.
			outcome.SaveErr = err
			s.cfg.Logger.Warn("failed to save exam result",
				"exam_id", s.cfg.ExamID,
				"error", err)
		} else {
			outcome.Saved = true
		}
	}

	s.mu.Lock()
	s.state = StateDone
	s.outcome = outcome
	s.mu.Unlock()

	if s.cfg.OnComplete != nil {
		s.cfg.OnComplete(outcome)
	}

	s.cfg.Logger.Info("exam session completed",
		"exam_id", s.cfg.ExamID,
		"obtained_marks", result.ObtainedMarks,
		"saved", outcome.Saved)
	return outcome
}

// Abandon tears the session down without submitting: the countdown stops and
// no partial result is sent. Safe at any point before Done.
func (s *Session) Abandon() {
	s.mu.Lock()
	cd := s.countdown
	if s.state == StateLoading || s.state == StateInProgress {
		s.state = StateFailed
	}
	s.mu.Unlock()
	if cd != nil {
		cd.Stop()
	}
	s.cfg.Logger.Info("exam session abandoned", "exam_id", s.cfg.ExamID)
}

// buildResult runs the scorer over every question in exam order. Caller
// holds s.mu.
func (s *Session) buildResult(remainingSeconds int) *models.ExamResult {
	result := ComputeResult(s.exam, s.answers, s.duration-remainingSeconds)
	result.StudentID = s.cfg.StudentID
	return result
}

// ComputeResult scores a full answer map against an exam. Exposed so the
// service side can recompute a submitted result for verification.
func ComputeResult(exam *models.Exam, answers map[string]models.OptionValue, timeTakenSeconds int) *models.ExamResult {
	var (
		correct    int
		wrong      int
		total      float64
		obtained   float64
		subjectAgg = make(map[string]*models.SubjectScore)
	)

	for _, q := range exam.Questions {
		eval := Evaluate(q, answers[q.ID])
		total += q.Marks
		obtained += eval.MarksDelta

		agg := subjectAgg[q.Subject]
		if agg == nil {
			agg = &models.SubjectScore{}
			subjectAgg[q.Subject] = agg
		}
		agg.TotalCount++
		agg.MarksObtained += eval.MarksDelta

		switch {
		case eval.Correct:
			correct++
			agg.CorrectCount++
		case eval.Attempted:
			wrong++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = roundTo2(obtained / total * 100)
	}

	subjectJSON, _ := json.Marshal(subjectAgg)
	answersJSON, _ := json.Marshal(answers)

	return &models.ExamResult{
		ExamID:           exam.ID,
		TotalQuestions:   len(exam.Questions),
		CorrectAnswers:   correct,
		WrongAnswers:     wrong,
		Unattempted:      len(exam.Questions) - correct - wrong,
		TotalMarks:       total,
		ObtainedMarks:    obtained,
		Percentage:       percentage,
		TimeTaken:        timeTakenSeconds,
		SubjectWiseScore: subjectJSON,
		Answers:          answersJSON,
	}
}

func roundTo2(f float64) float64 {
	return math.Round(f*100) / 100
}
