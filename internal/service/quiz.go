package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
)

var ErrNoQuestionsAvailable = errors.New("no questions available for the test")

const forwardTimeout = 5 * time.Second

// QuestionView is a next-question payload for the transport layer.
type QuestionView struct {
	Question entities.Question
	Number   int // 1-based position in the test
	Total    int
}

// AnswerOutcome is the per-answer feedback for the transport layer.
// Next is nil and Assessment is set once the test is finished.
type AnswerOutcome struct {
	IsCorrect     bool
	CorrectOption string
	Next          *QuestionView
	Assessment    *entities.Assessment
}

// QuizService orchestrates the test lifecycle: it draws questions, tracks
// progress through the session store, scores completed sessions and hands
// results to the monitoring sink fire-and-forget.
type QuizService struct {
	repo     QuestionRepo
	selector *QuestionSelector
	store    *SessionStore
	assessor *Assessor
	results  ResultSink
	logger   *zap.Logger
	clock    Clock

	totalQuestions int
	quotas         map[entities.Level]int
}

// NewQuizService wires the quiz orchestrator. results may be nil when no
// monitoring collector is configured.
func NewQuizService(
	repo QuestionRepo,
	selector *QuestionSelector,
	store *SessionStore,
	assessor *Assessor,
	results ResultSink,
	logger *zap.Logger,
	clock Clock,
	totalQuestions int,
	quotas map[entities.Level]int,
) *QuizService {
	if clock == nil {
		clock = systemClock{}
	}
	return &QuizService{
		repo:           repo,
		selector:       selector,
		store:          store,
		assessor:       assessor,
		results:        results,
		logger:         logger,
		clock:          clock,
		totalQuestions: totalQuestions,
		quotas:         quotas,
	}
}

// Start begins a new test for the user, replacing any prior session, and
// returns the first question.
func (s *QuizService) Start(userID int64, username string) (*QuestionView, error) {
	s.store.Create(userID, username)

	questions := s.selector.Select(s.totalQuestions, s.quotas)
	if len(questions) == 0 {
		s.store.Clear(userID)
		return nil, ErrNoQuestionsAvailable
	}

	if err := s.store.AssignQuestions(userID, questions); err != nil {
		return nil, err
	}

	s.logger.Info("test started",
		zap.Int64("user_id", userID),
		zap.Int("questions", len(questions)),
	)

	return &QuestionView{Question: questions[0], Number: 1, Total: len(questions)}, nil
}

// Restart discards the current session and starts a fresh test.
func (s *QuizService) Restart(userID int64, username string) (*QuestionView, error) {
	s.store.Clear(userID)
	return s.Start(userID, username)
}

// Cancel discards the user's session, if any.
func (s *QuizService) Cancel(userID int64) {
	s.store.Clear(userID)
}

// Answer records one answer. Correctness is derived here, once, against
// the question's correct index; the record keeps it fixed. The returned
// outcome carries the feedback and either the next question or, on the
// last answer, the final assessment. A retried or double-tapped delivery
// fails with ErrStaleAnswer and changes nothing.
func (s *QuizService) Answer(userID int64, questionID, selectedIndex int) (*AnswerOutcome, error) {
	check, err := s.repo.CheckAnswer(questionID, selectedIndex)
	if err != nil {
		return nil, err
	}

	record := entities.AnswerRecord{
		QuestionID:    questionID,
		SelectedIndex: selectedIndex,
		IsCorrect:     check.IsCorrect,
		Weight:        check.Weight,
		AnsweredAt:    s.clock.Now(),
	}

	if err = s.store.RecordAnswer(userID, record); err != nil {
		return nil, err
	}

	outcome := &AnswerOutcome{
		IsCorrect:     check.IsCorrect,
		CorrectOption: check.CorrectOption,
	}

	if s.store.IsComplete(userID) {
		session, err := s.store.Complete(userID)
		if err != nil {
			return nil, err
		}

		outcome.Assessment = s.assessor.Assess(session, session.Questions)
		s.forward(session, outcome.Assessment)
		s.store.Clear(userID)

		s.logger.Info("test completed",
			zap.Int64("user_id", userID),
			zap.String("level", string(outcome.Assessment.Level)),
			zap.Int("percentage", outcome.Assessment.PercentageScore),
		)

		return outcome, nil
	}

	session, ok := s.store.Get(userID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	question, ok := session.CurrentQuestion()
	if !ok {
		return nil, ErrNoActiveSession
	}

	outcome.Next = &QuestionView{
		Question: question,
		Number:   session.CurrentIndex + 1,
		Total:    len(session.Questions),
	}
	return outcome, nil
}

// forward hands the flattened result to the monitoring sink in the
// background. Failures are logged and swallowed: the user-facing flow
// never waits on or rolls back due to the collector.
func (s *QuizService) forward(session *entities.Session, assessment *entities.Assessment) {
	if s.results == nil {
		return
	}

	result := &entities.TestResult{
		UserID:            session.UserID,
		Username:          session.Username,
		Level:             assessment.Level,
		PercentageScore:   assessment.PercentageScore,
		VocabularyPercent: assessment.ByCategory[entities.CategoryVocabulary].Percent(),
		GrammarPercent:    assessment.ByCategory[entities.CategoryGrammar].Percent(),
		Duration:          session.Duration(s.clock.Now()),
		CompletedAt:       s.clock.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
		defer cancel()

		if err := s.results.Save(ctx, result); err != nil {
			s.logger.Warn("failed to forward test result",
				zap.Int64("user_id", result.UserID),
				zap.Error(err),
			)
		}
	}()
}
