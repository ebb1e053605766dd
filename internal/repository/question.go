package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrRepositoryEmpty  = errors.New("question repository is empty")
	ErrInvalidOptionIdx = errors.New("selected option index out of range")
)

// DefaultLevelWeights returns the built-in weight table used when a
// question carries no explicit weight.
func DefaultLevelWeights() map[entities.Level]int {
	return map[entities.Level]int{
		entities.LevelA1: 1,
		entities.LevelA2: 2,
		entities.LevelB1: 3,
		entities.LevelB2: 4,
	}
}

// ValidationError describes the first violation found while loading the
// question bank. Load is all-or-nothing: one bad question fails the load.
type ValidationError struct {
	QuestionID int
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: invalid %s: %s", e.QuestionID, e.Field, e.Reason)
}

// AnswerCheck is the outcome of checking a selected option against a question.
type AnswerCheck struct {
	IsCorrect     bool
	CorrectOption string // display text of the correct option
	Weight        int    // resolved question weight
}

// QuestionRepository holds the validated question set loaded from a JSON
// file. It owns the canonical set and hands out copies, never for mutation.
type QuestionRepository struct {
	mu        sync.RWMutex
	path      string
	questions []entities.Question
	byID      map[int]entities.Question
	weights   map[entities.Level]int
}

// NewQuestionRepository loads and validates the question bank at path.
// A single invalid entry fails the whole load with a *ValidationError.
// A nil weight table falls back to the built-in level defaults.
func NewQuestionRepository(path string, weights map[entities.Level]int) (*QuestionRepository, error) {
	questions, byID, err := loadQuestions(path)
	if err != nil {
		return nil, err
	}

	if weights == nil {
		weights = DefaultLevelWeights()
	}

	return &QuestionRepository{
		path:      path,
		questions: questions,
		byID:      byID,
		weights:   weights,
	}, nil
}

// Reload re-reads the bank from disk and swaps the set atomically.
// On any validation failure the previously loaded set stays in place.
func (r *QuestionRepository) Reload() error {
	questions, byID, err := loadQuestions(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.questions = questions
	r.byID = byID
	r.mu.Unlock()

	return nil
}

// ByID returns the question with the given id.
func (r *QuestionRepository) ByID(id int) (entities.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.byID[id]
	if !ok {
		return entities.Question{}, ErrQuestionNotFound
	}
	return q, nil
}

// ByLevel returns a copy of all questions with the given level.
func (r *QuestionRepository) ByLevel(level entities.Level) []entities.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Question, 0)
	for _, q := range r.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out
}

// ByCategory returns a copy of all questions with the given category.
func (r *QuestionRepository) ByCategory(category entities.Category) []entities.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Question, 0)
	for _, q := range r.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// Count returns the number of loaded questions.
func (r *QuestionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.questions)
}

// CheckAnswer compares a selected option against the question with the
// given id. It returns ErrQuestionNotFound for an unknown id and mutates
// nothing.
func (r *QuestionRepository) CheckAnswer(questionID, selectedIndex int) (AnswerCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.byID[questionID]
	if !ok {
		return AnswerCheck{}, ErrQuestionNotFound
	}

	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return AnswerCheck{}, ErrInvalidOptionIdx
	}

	return AnswerCheck{
		IsCorrect:     selectedIndex == q.CorrectIndex,
		CorrectOption: q.Options[q.CorrectIndex],
		Weight:        ResolveWeight(q, r.weights),
	}, nil
}

// ResolveWeight returns the explicit question weight, or the table value
// for the question's level when the bank omits it.
func ResolveWeight(q entities.Question, weights map[entities.Level]int) int {
	if q.Weight > 0 {
		return q.Weight
	}
	if weights == nil {
		weights = DefaultLevelWeights()
	}
	return weights[q.Level]
}

func loadQuestions(path string) ([]entities.Question, map[int]entities.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read question bank: %w", err)
	}

	var questions []entities.Question
	if err = json.Unmarshal(data, &questions); err != nil {
		return nil, nil, fmt.Errorf("unmarshal question bank: %w", err)
	}

	if len(questions) == 0 {
		return nil, nil, ErrRepositoryEmpty
	}

	byID := make(map[int]entities.Question, len(questions))
	for _, q := range questions {
		if err = validateQuestion(q, byID); err != nil {
			return nil, nil, err
		}
		byID[q.ID] = q
	}

	return questions, byID, nil
}

// validateQuestion checks a single bank entry and returns the first
// violation found.
func validateQuestion(q entities.Question, seen map[int]entities.Question) error {
	if q.ID <= 0 {
		return &ValidationError{QuestionID: q.ID, Field: "id", Reason: "must be a positive integer"}
	}
	if _, ok := seen[q.ID]; ok {
		return &ValidationError{QuestionID: q.ID, Field: "id", Reason: "duplicate id"}
	}
	if q.Text == "" {
		return &ValidationError{QuestionID: q.ID, Field: "text", Reason: "must not be empty"}
	}
	if len(q.Options) != entities.OptionCount {
		return &ValidationError{
			QuestionID: q.ID,
			Field:      "options",
			Reason:     fmt.Sprintf("expected %d options, got %d", entities.OptionCount, len(q.Options)),
		}
	}
	for i, opt := range q.Options {
		if opt == "" {
			return &ValidationError{
				QuestionID: q.ID,
				Field:      "options",
				Reason:     fmt.Sprintf("option %d must not be empty", i),
			}
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= entities.OptionCount {
		return &ValidationError{QuestionID: q.ID, Field: "correct_index", Reason: "must be between 0 and 3"}
	}
	if !q.Level.Valid() {
		return &ValidationError{QuestionID: q.ID, Field: "level", Reason: "must be one of A1, A2, B1, B2"}
	}
	if !q.Category.Valid() {
		return &ValidationError{QuestionID: q.ID, Field: "category", Reason: "must be vocabulary or grammar"}
	}
	if q.Weight < 0 {
		return &ValidationError{QuestionID: q.ID, Field: "weight", Reason: "must not be negative"}
	}
	return nil
}
