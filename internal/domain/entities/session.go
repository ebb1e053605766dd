package entities

import "time"

// SessionState is the lifecycle state of a test session.
type SessionState string

const (
	StateReady      SessionState = "ready"       // session created, no questions assigned yet
	StateInProgress SessionState = "in_progress" // questions assigned, answers being collected
	StateCompleted  SessionState = "completed"   // all questions answered
)

// AnswerRecord is a single recorded answer within a session.
// Correctness and weight are fixed at answer time and never re-derived.
type AnswerRecord struct {
	QuestionID    int       // id of the answered question
	SelectedIndex int       // option index the user picked
	IsCorrect     bool      // whether the pick matched the correct index
	Weight        int       // resolved weight copied from the question
	AnsweredAt    time.Time // timestamp when the answer was recorded
}

// Session is the mutable per-user state of one test attempt.
// The session store exclusively owns Session values; all mutation goes
// through the store so that expiry and answer recording cannot interleave.
type Session struct {
	UserID       int64          // Telegram user id
	Username     string         // Telegram username, may be empty
	State        SessionState   // current lifecycle state
	Questions    []Question     // questions served to the user, assigned once
	CurrentIndex int            // cursor into Questions
	Answers      []AnswerRecord // append-only answer log
	Score        int            // running weighted total of correct answers
	StartedAt    time.Time      // when the session was created
	CompletedAt  *time.Time     // when the test finished (nil until completed)
	LastActivity time.Time      // last write, drives inactivity expiry
}

// NewSession creates a fresh session in the ready state.
func NewSession(userID int64, username string, now time.Time) *Session {
	return &Session{
		UserID:       userID,
		Username:     username,
		State:        StateReady,
		StartedAt:    now,
		LastActivity: now,
	}
}

// CurrentQuestion returns the question at the cursor, or false when the
// session has no questions left (or none assigned).
func (s *Session) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// IsComplete reports whether every assigned question has been answered.
func (s *Session) IsComplete() bool {
	return len(s.Questions) > 0 && s.CurrentIndex >= len(s.Questions)
}

// Duration returns the time spent on the test so far, or the final
// duration once the session is completed.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.CompletedAt != nil {
		return s.CompletedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}
