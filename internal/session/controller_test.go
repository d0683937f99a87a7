package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/eduprep/exam-service/internal/models"
)

type fakeSource struct {
	exam *models.Exam
	err  error
}

func (f *fakeSource) FetchExam(ctx context.Context, examID string) (*models.Exam, error) {
	return f.exam, f.err
}

type fakeSink struct {
	mu      sync.Mutex
	saved   []*models.ExamResult
	failErr error
}

func (f *fakeSink) SaveResult(ctx context.Context, result *models.ExamResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.saved = append(f.saved, result)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// threeQuestionExam is the +4/-1 exam used across the end-to-end scenarios:
// Q1 single-choice "2x", Q2 multi-choice {A,C}, Q3 integer "7".
func threeQuestionExam() *models.Exam {
	return &models.Exam{
		ID:       "exam-1",
		Title:    "Mock Test 1",
		Duration: 1,
		Questions: []models.Question{
			{ID: "q1", Type: models.SingleChoice, Text: "Derivative of x^2?", CorrectAnswer: []byte(`"2x"`), Marks: 4, NegativeMarks: 1, Subject: models.SubjectMathematics},
			{ID: "q2", Type: models.MultiChoice, Text: "Pick A and C", CorrectAnswer: []byte(`["A","C"]`), Marks: 4, NegativeMarks: 1, Subject: models.SubjectPhysics},
			{ID: "q3", Type: models.Integer, Text: "3 + 4 = ?", CorrectAnswer: []byte(`"7"`), Marks: 4, NegativeMarks: 1, Subject: models.SubjectChemistry},
		},
	}
}

func startedSession(t *testing.T, exam *models.Exam, sink ResultSink, onComplete func(*Outcome)) *Session {
	t.Helper()
	s := New(Config{
		ExamID:     exam.ID,
		StudentID:  "student-1",
		Source:     &fakeSource{exam: exam},
		Sink:       sink,
		Logger:     testLogger(),
		OnComplete: onComplete,
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	t.Cleanup(s.Abandon)
	return s
}

func TestLoadFailureIsTerminal(t *testing.T) {
	s := New(Config{
		ExamID: "missing",
		Source: &fakeSource{err: errors.New("boom")},
		Logger: testLogger(),
	})
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected Load to fail")
	}
	if s.State() != StateFailed {
		t.Errorf("State() = %s, want %s", s.State(), StateFailed)
	}
	if err := s.SetAnswer("q1", models.OptionValue{Primitive: "x"}); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("SetAnswer after failed load = %v, want ErrNotInProgress", err)
	}
}

func TestLoadEmptyQuestionListIsTerminal(t *testing.T) {
	s := New(Config{
		ExamID: "empty",
		Source: &fakeSource{exam: &models.Exam{ID: "empty", Duration: 10}},
		Logger: testLogger(),
	})
	if err := s.Load(context.Background()); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("Load() = %v, want ErrNoQuestions", err)
	}
	if s.State() != StateFailed {
		t.Errorf("State() = %s, want %s", s.State(), StateFailed)
	}
}

func TestEndToEndAllAnswered(t *testing.T) {
	var completions []*Outcome
	sink := &fakeSink{}
	s := startedSession(t, threeQuestionExam(), sink, func(o *Outcome) {
		completions = append(completions, o)
	})

	s.SetAnswer("q1", models.DecodeOptionValue([]byte(`"2x"`)))
	s.SetAnswer("q2", models.DecodeOptionValue([]byte(`["C","A"]`)))
	s.SetAnswer("q3", models.DecodeOptionValue([]byte(`"8"`)))

	outcome := s.Submit(context.Background())
	r := outcome.Result

	if r.CorrectAnswers != 2 || r.WrongAnswers != 1 || r.Unattempted != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/1/0", r.CorrectAnswers, r.WrongAnswers, r.Unattempted)
	}
	if r.ObtainedMarks != 7 || r.TotalMarks != 12 {
		t.Errorf("marks = %v/%v, want 7/12", r.ObtainedMarks, r.TotalMarks)
	}
	if math.Abs(r.Percentage-58.33) > 0.001 {
		t.Errorf("percentage = %v, want 58.33", r.Percentage)
	}
	if len(completions) != 1 {
		t.Fatalf("OnComplete fired %d times, want 1", len(completions))
	}
	if !outcome.Saved || sink.count() != 1 {
		t.Errorf("result not saved: saved=%v sink=%d", outcome.Saved, sink.count())
	}
}

func TestEndToEndWithBlankQuestion(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)

	s.SetAnswer("q1", models.DecodeOptionValue([]byte(`"2x"`)))
	s.SetAnswer("q2", models.DecodeOptionValue([]byte(`["A","C"]`)))
	// q3 deliberately left blank.

	r := s.Submit(context.Background()).Result
	if r.Unattempted != 1 {
		t.Errorf("unattempted = %d, want 1", r.Unattempted)
	}
	if r.ObtainedMarks != 8 {
		t.Errorf("obtained = %v, want 8", r.ObtainedMarks)
	}
	if math.Abs(r.Percentage-66.67) > 0.001 {
		t.Errorf("percentage = %v, want 66.67", r.Percentage)
	}
}

func TestCountInvariantHolds(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)
	s.SetAnswer("q2", models.DecodeOptionValue([]byte(`["A"]`)))

	r := s.Submit(context.Background()).Result
	if r.CorrectAnswers+r.WrongAnswers+r.Unattempted != r.TotalQuestions {
		t.Errorf("correct+wrong+unattempted = %d, want %d",
			r.CorrectAnswers+r.WrongAnswers+r.Unattempted, r.TotalQuestions)
	}
}

func TestSubjectWiseBreakdown(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)
	s.SetAnswer("q1", models.DecodeOptionValue([]byte(`"2x"`)))
	s.SetAnswer("q3", models.DecodeOptionValue([]byte(`"9"`)))

	r := s.Submit(context.Background()).Result

	var breakdown map[string]models.SubjectScore
	if err := json.Unmarshal(r.SubjectWiseScore, &breakdown); err != nil {
		t.Fatalf("failed to decode subject breakdown: %v", err)
	}
	maths := breakdown[models.SubjectMathematics]
	if maths.CorrectCount != 1 || maths.TotalCount != 1 || maths.MarksObtained != 4 {
		t.Errorf("mathematics breakdown = %+v, want 1 correct of 1, 4 marks", maths)
	}
	chem := breakdown[models.SubjectChemistry]
	if chem.CorrectCount != 0 || chem.MarksObtained != -1 {
		t.Errorf("chemistry breakdown = %+v, want 0 correct, -1 marks", chem)
	}
}

func TestDoubleSubmitIsNoOp(t *testing.T) {
	fired := 0
	sink := &fakeSink{}
	s := startedSession(t, threeQuestionExam(), sink, func(*Outcome) { fired++ })

	first := s.Submit(context.Background())
	second := s.Submit(context.Background())

	if fired != 1 {
		t.Errorf("OnComplete fired %d times, want exactly 1", fired)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d results, want 1", sink.count())
	}
	if second != first {
		t.Error("second Submit should return the outcome of the first")
	}
	if s.State() != StateDone {
		t.Errorf("State() = %s, want %s", s.State(), StateDone)
	}
}

func TestTimerExpiryAutoSubmitsExactlyOnce(t *testing.T) {
	fired := 0
	s := startedSession(t, threeQuestionExam(), nil, func(*Outcome) { fired++ })

	// Swap in an undriven clock and simulate the full minute tick by tick.
	s.countdown.Stop()
	s.countdown = NewCountdown(60, s.onExpire)
	for i := 0; i < 60; i++ {
		s.countdown.Tick()
	}

	if fired != 1 {
		t.Errorf("auto-submit fired %d times after 60 ticks, want exactly 1", fired)
	}
	if s.State() != StateDone {
		t.Errorf("State() = %s, want %s", s.State(), StateDone)
	}
	if got := s.Submit(context.Background()); got == nil {
		t.Error("user submit racing a completed timer submit should return the existing outcome")
	}
}

func TestSaveFailureDoesNotBlockCompletion(t *testing.T) {
	fired := 0
	sink := &fakeSink{failErr: errors.New("backend unavailable")}
	s := startedSession(t, threeQuestionExam(), sink, func(*Outcome) { fired++ })

	outcome := s.Submit(context.Background())

	if outcome.Saved {
		t.Error("Saved should be false when the sink fails")
	}
	if outcome.SaveErr == nil {
		t.Error("SaveErr should surface the sink failure")
	}
	if fired != 1 {
		t.Errorf("OnComplete fired %d times despite save failure, want 1", fired)
	}
	if s.State() != StateDone {
		t.Errorf("State() = %s, want %s", s.State(), StateDone)
	}
}

func TestAbandonStopsClockWithoutSubmitting(t *testing.T) {
	fired := 0
	sink := &fakeSink{}
	s := startedSession(t, threeQuestionExam(), sink, func(*Outcome) { fired++ })

	s.Abandon()
	for i := 0; i < 120; i++ {
		s.countdown.Tick()
	}

	if fired != 0 {
		t.Errorf("abandoned session fired OnComplete %d times, want 0", fired)
	}
	if sink.count() != 0 {
		t.Errorf("abandoned session sent %d results, want 0", sink.count())
	}
}

func TestGoToClampsOutOfRange(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)

	s.GoTo(99)
	if got := s.CurrentIndex(); got != 2 {
		t.Errorf("CurrentIndex() = %d after over-range GoTo, want 2", got)
	}
	s.GoTo(-5)
	if got := s.CurrentIndex(); got != 0 {
		t.Errorf("CurrentIndex() = %d after under-range GoTo, want 0", got)
	}
}

func TestToggleFlagIsAdvisory(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)

	if err := s.ToggleFlag(1); err != nil {
		t.Fatalf("ToggleFlag() failed: %v", err)
	}
	if !s.IsFlagged(1) {
		t.Error("index 1 should be flagged")
	}
	if err := s.ToggleFlag(1); err != nil {
		t.Fatalf("ToggleFlag() failed: %v", err)
	}
	if s.IsFlagged(1) {
		t.Error("second toggle should clear the flag")
	}
	if err := s.ToggleFlag(7); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("ToggleFlag(7) = %v, want ErrIndexOutOfRange", err)
	}

	s.SetAnswer("q1", models.DecodeOptionValue([]byte(`"2x"`)))
	s.ToggleFlag(0)
	r := s.Submit(context.Background()).Result
	if r.CorrectAnswers != 1 {
		t.Errorf("flags must not affect scoring: correct = %d, want 1", r.CorrectAnswers)
	}
}

func TestSetAnswerOverwrites(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)

	s.SetAnswer("q3", models.DecodeOptionValue([]byte(`"9"`)))
	s.SetAnswer("q3", models.DecodeOptionValue([]byte(`"7"`)))

	r := s.Submit(context.Background()).Result
	if r.CorrectAnswers != 1 {
		t.Errorf("latest answer should win: correct = %d, want 1", r.CorrectAnswers)
	}
}

func TestMutationRejectedAfterSubmit(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)
	s.Submit(context.Background())

	if err := s.SetAnswer("q1", models.DecodeOptionValue([]byte(`"2x"`))); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("SetAnswer after submit = %v, want ErrNotInProgress", err)
	}
	if err := s.GoTo(1); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("GoTo after submit = %v, want ErrNotInProgress", err)
	}
}

func TestZeroTotalMarksPercentage(t *testing.T) {
	exam := &models.Exam{
		ID:       "zero",
		Duration: 1,
		Questions: []models.Question{
			{ID: "q1", Type: models.Integer, CorrectAnswer: []byte(`"1"`), Marks: 0, Subject: models.SubjectPhysics},
		},
	}
	r := ComputeResult(exam, nil, 0)
	if r.Percentage != 0 {
		t.Errorf("percentage with zero total marks = %v, want 0", r.Percentage)
	}
}

func TestTimeTakenReflectsRemaining(t *testing.T) {
	s := startedSession(t, threeQuestionExam(), nil, nil)

	s.countdown.Stop()
	s.countdown = NewCountdown(60, s.onExpire)
	for i := 0; i < 25; i++ {
		s.countdown.Tick()
	}

	r := s.Submit(context.Background()).Result
	if r.TimeTaken != 25 {
		t.Errorf("TimeTaken = %d, want 25", r.TimeTaken)
	}
}
