package service

import (
	"errors"
	"sync"
	"time"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrStaleAnswer     = errors.New("answer does not match the current question")
	ErrTestNotStarted  = errors.New("test has not been started")
)

// Clock abstracts time for the session store so tests control expiry.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SessionStore holds at most one test session per user, with inactivity
// expiry measured from the last write. A single mutex guards the map, so
// answer recording, lookup and the expiry sweep never interleave on the
// same key. An expired session is indistinguishable from a cleared one.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*entities.Session
	timeout  time.Duration
	clock    Clock
}

// NewSessionStore creates a store with the given inactivity timeout.
// A nil clock falls back to the system clock.
func NewSessionStore(timeout time.Duration, clock Clock) *SessionStore {
	if clock == nil {
		clock = systemClock{}
	}
	return &SessionStore{
		sessions: make(map[int64]*entities.Session),
		timeout:  timeout,
		clock:    clock,
	}
}

// Create starts a fresh ready session for the user, replacing any prior
// session unconditionally.
func (s *SessionStore) Create(userID int64, username string) *entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := entities.NewSession(userID, username, s.clock.Now())
	s.sessions[userID] = session
	return snapshot(session)
}

// Get returns a snapshot of the user's current session. A session that
// has passed its inactivity timeout is purged and reported as absent.
func (s *SessionStore) Get(userID int64) (*entities.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(userID)
	if !ok {
		return nil, false
	}
	return snapshot(session), true
}

// AssignQuestions sets the question sequence for the user's session and
// moves it to the in_progress state.
func (s *SessionStore) AssignQuestions(userID int64, questions []entities.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(userID)
	if !ok {
		return ErrNoActiveSession
	}

	session.Questions = questions
	session.CurrentIndex = 0
	session.State = entities.StateInProgress
	session.LastActivity = s.clock.Now()
	return nil
}

// RecordAnswer appends the answer, advances the cursor and adds the weight
// to the score iff correct. An answer referencing any question other than
// the one at the cursor is rejected with ErrStaleAnswer, so a double-tap
// records exactly once.
func (s *SessionStore) RecordAnswer(userID int64, answer entities.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(userID)
	if !ok {
		return ErrNoActiveSession
	}
	if session.State != entities.StateInProgress {
		return ErrTestNotStarted
	}

	current, ok := session.CurrentQuestion()
	if !ok || current.ID != answer.QuestionID {
		return ErrStaleAnswer
	}

	session.Answers = append(session.Answers, answer)
	session.CurrentIndex++
	if answer.IsCorrect {
		session.Score += answer.Weight
	}
	session.LastActivity = s.clock.Now()
	return nil
}

// IsComplete reports whether the user's session has answered every
// assigned question.
func (s *SessionStore) IsComplete(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(userID)
	return ok && session.IsComplete()
}

// Complete marks the session completed and stamps the completion time.
// It does not clear the session: the scoring engine reads the finished
// session before it is discarded.
func (s *SessionStore) Complete(userID int64) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(userID)
	if !ok {
		return nil, ErrNoActiveSession
	}

	now := s.clock.Now()
	session.State = entities.StateCompleted
	session.CompletedAt = &now
	session.LastActivity = now
	return snapshot(session), nil
}

// Clear removes the user's session unconditionally.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Reset clears any existing session and creates a fresh ready one.
func (s *SessionStore) Reset(userID int64, username string) *entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	session := entities.NewSession(userID, username, s.clock.Now())
	s.sessions[userID] = session
	return snapshot(session)
}

// Sweep purges every expired session and returns how many were removed.
// It runs on a background schedule independent of request handling.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for userID, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions, counting not-yet-swept expired
// ones.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// live returns the session for userID, purging it first if expired.
// Callers must hold s.mu.
func (s *SessionStore) live(userID int64) (*entities.Session, bool) {
	session, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if s.expired(session, s.clock.Now()) {
		delete(s.sessions, userID)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) expired(session *entities.Session, now time.Time) bool {
	return s.timeout > 0 && now.Sub(session.LastActivity) > s.timeout
}

// snapshot copies the session so callers never share mutable state with
// the store. Slices are copied shallowly; entries are value types.
func snapshot(session *entities.Session) *entities.Session {
	out := *session
	out.Questions = append([]entities.Question(nil), session.Questions...)
	out.Answers = append([]entities.AnswerRecord(nil), session.Answers...)
	return &out
}
