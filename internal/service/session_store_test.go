package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
)

const testTimeout = 30 * time.Minute

func testQuestions(n int) []entities.Question {
	questions := make([]entities.Question, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, entities.Question{
			ID:           i,
			Text:         "q",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 0,
			Level:        entities.LevelA1,
			Category:     entities.CategoryGrammar,
		})
	}
	return questions
}

func answerFor(q entities.Question, correct bool, now time.Time) entities.AnswerRecord {
	selected := q.CorrectIndex
	if !correct {
		selected = (q.CorrectIndex + 1) % entities.OptionCount
	}
	return entities.AnswerRecord{
		QuestionID:    q.ID,
		SelectedIndex: selected,
		IsCorrect:     correct,
		Weight:        2,
		AnsweredAt:    now,
	}
}

func TestCreate_ReturnsReadySession(t *testing.T) {
	store := NewSessionStore(testTimeout, newFakeClock())

	session := store.Create(7, "alice")

	if session.State != entities.StateReady {
		t.Errorf("State = %q, want %q", session.State, entities.StateReady)
	}
	if session.UserID != 7 || session.Username != "alice" {
		t.Errorf("unexpected identity: %d %q", session.UserID, session.Username)
	}
}

func TestCreate_OverwritesExistingSession(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)

	store.Create(7, "alice")
	if err := store.AssignQuestions(7, testQuestions(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Create(7, "alice")

	session, ok := store.Get(7)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if session.State != entities.StateReady {
		t.Errorf("State after re-create = %q, want %q", session.State, entities.StateReady)
	}
	if len(session.Questions) != 0 {
		t.Errorf("re-created session kept %d questions, want 0", len(session.Questions))
	}
}

func TestGet_AbsentUser(t *testing.T) {
	store := NewSessionStore(testTimeout, newFakeClock())

	if _, ok := store.Get(99); ok {
		t.Error("expected absence for unknown user")
	}
}

func TestAssignQuestions_TransitionsToInProgress(t *testing.T) {
	store := NewSessionStore(testTimeout, newFakeClock())
	store.Create(7, "alice")

	if err := store.AssignQuestions(7, testQuestions(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, _ := store.Get(7)
	if session.State != entities.StateInProgress {
		t.Errorf("State = %q, want %q", session.State, entities.StateInProgress)
	}
	if len(session.Questions) != 3 || session.CurrentIndex != 0 {
		t.Errorf("unexpected progress: %d questions, cursor %d", len(session.Questions), session.CurrentIndex)
	}
}

func TestRecordAnswer_AdvancesAndScores(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")

	questions := testQuestions(2)
	if err := store.AssignQuestions(7, questions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.RecordAnswer(7, answerFor(questions[0], true, clock.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.RecordAnswer(7, answerFor(questions[1], false, clock.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, _ := store.Get(7)
	if len(session.Answers) != 2 {
		t.Errorf("recorded %d answers, want 2", len(session.Answers))
	}
	if session.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", session.CurrentIndex)
	}
	// Only the correct answer contributes its weight.
	if session.Score != 2 {
		t.Errorf("Score = %d, want 2", session.Score)
	}
}

func TestRecordAnswer_DoubleSubmissionCountsOnce(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")

	questions := testQuestions(2)
	if err := store.AssignQuestions(7, questions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer := answerFor(questions[0], true, clock.Now())
	if err := store.RecordAnswer(7, answer); err != nil {
		t.Fatalf("unexpected error on first submission: %v", err)
	}

	// The retried delivery references a question that is no longer at
	// the cursor and must change nothing.
	if err := store.RecordAnswer(7, answer); !errors.Is(err, ErrStaleAnswer) {
		t.Fatalf("expected ErrStaleAnswer on duplicate, got %v", err)
	}

	session, _ := store.Get(7)
	if len(session.Answers) != 1 {
		t.Errorf("recorded %d answers, want 1", len(session.Answers))
	}
	if session.Score != 2 {
		t.Errorf("Score = %d, want 2 (incremented once)", session.Score)
	}
	if session.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", session.CurrentIndex)
	}
}

func TestRecordAnswer_WithoutSession(t *testing.T) {
	store := NewSessionStore(testTimeout, newFakeClock())

	err := store.RecordAnswer(7, entities.AnswerRecord{QuestionID: 1})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestRecordAnswer_BeforeQuestionsAssigned(t *testing.T) {
	store := NewSessionStore(testTimeout, newFakeClock())
	store.Create(7, "alice")

	err := store.RecordAnswer(7, entities.AnswerRecord{QuestionID: 1})
	if !errors.Is(err, ErrTestNotStarted) {
		t.Errorf("expected ErrTestNotStarted, got %v", err)
	}
}

func TestIsComplete(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")

	questions := testQuestions(2)
	if err := store.AssignQuestions(7, questions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.IsComplete(7) {
		t.Error("fresh test must not be complete")
	}

	_ = store.RecordAnswer(7, answerFor(questions[0], true, clock.Now()))
	_ = store.RecordAnswer(7, answerFor(questions[1], true, clock.Now()))

	if !store.IsComplete(7) {
		t.Error("expected completion after answering every question")
	}
}

func TestComplete_StampsButDoesNotClear(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")
	if err := store.AssignQuestions(7, testQuestions(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := store.Complete(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.State != entities.StateCompleted {
		t.Errorf("State = %q, want %q", session.State, entities.StateCompleted)
	}
	if session.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}

	// The finished session stays readable until explicitly cleared.
	if _, ok := store.Get(7); !ok {
		t.Error("completed session must remain until cleared")
	}
}

func TestClearAndReset(t *testing.T) {
	store := NewSessionStore(testTimeout, newFakeClock())
	store.Create(7, "alice")

	store.Clear(7)
	if _, ok := store.Get(7); ok {
		t.Error("expected session gone after Clear")
	}

	session := store.Reset(7, "alice")
	if session.State != entities.StateReady {
		t.Errorf("Reset returned state %q, want %q", session.State, entities.StateReady)
	}
}

func TestExpiry_GetTreatsExpiredAsAbsent(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")

	clock.Advance(testTimeout + time.Minute)

	if _, ok := store.Get(7); ok {
		t.Error("expected expired session to be absent")
	}
}

func TestExpiry_MidQuizAnswerFindsNoSession(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")

	questions := testQuestions(20)
	if err := store.AssignQuestions(7, questions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.RecordAnswer(7, answerFor(questions[i], true, clock.Now())); err != nil {
			t.Fatalf("unexpected error on answer %d: %v", i, err)
		}
	}

	clock.Advance(testTimeout + time.Second)

	err := store.RecordAnswer(7, answerFor(questions[3], true, clock.Now()))
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after expiry, got %v", err)
	}
	if _, ok := store.Get(7); ok {
		t.Error("no partial-credit session may survive expiry")
	}
}

func TestExpiry_MeasuredFromLastWrite(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)
	store.Create(7, "alice")

	questions := testQuestions(2)
	if err := store.AssignQuestions(7, questions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Activity keeps pushing the deadline.
	clock.Advance(testTimeout - time.Minute)
	if err := store.RecordAnswer(7, answerFor(questions[0], true, clock.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(testTimeout - time.Minute)
	if _, ok := store.Get(7); !ok {
		t.Error("session expired although last write was within the timeout")
	}
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testTimeout, clock)

	store.Create(1, "stale")
	clock.Advance(testTimeout / 2)
	store.Create(2, "fresh")
	clock.Advance(testTimeout/2 + time.Second)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d sessions, want 1", removed)
	}
	if _, ok := store.Get(1); ok {
		t.Error("expected stale session to be swept")
	}
	if _, ok := store.Get(2); !ok {
		t.Error("expected fresh session to survive the sweep")
	}
}

func TestZeroTimeoutDisablesExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(0, clock)
	store.Create(7, "alice")

	clock.Advance(365 * 24 * time.Hour)

	if _, ok := store.Get(7); !ok {
		t.Error("zero timeout must disable expiry")
	}
	if removed := store.Sweep(); removed != 0 {
		t.Errorf("Sweep removed %d sessions, want 0", removed)
	}
}
