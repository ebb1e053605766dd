package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/repository"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeRepo is an in-memory QuestionRepo over a fixed question slice.
type fakeRepo struct {
	questions []entities.Question
}

func (f *fakeRepo) ByID(id int) (entities.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return entities.Question{}, repository.ErrQuestionNotFound
}

func (f *fakeRepo) ByLevel(level entities.Level) []entities.Question {
	out := make([]entities.Question, 0)
	for _, q := range f.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeRepo) ByCategory(category entities.Category) []entities.Question {
	out := make([]entities.Question, 0)
	for _, q := range f.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeRepo) CheckAnswer(questionID, selectedIndex int) (repository.AnswerCheck, error) {
	q, err := f.ByID(questionID)
	if err != nil {
		return repository.AnswerCheck{}, err
	}
	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return repository.AnswerCheck{}, repository.ErrInvalidOptionIdx
	}
	return repository.AnswerCheck{
		IsCorrect:     selectedIndex == q.CorrectIndex,
		CorrectOption: q.Options[q.CorrectIndex],
		Weight:        repository.ResolveWeight(q, nil),
	}, nil
}

func (f *fakeRepo) Count() int { return len(f.questions) }

// bankWithPerLevel builds a bank with n questions per level, alternating
// categories. Question ids are unique across the bank.
func bankWithPerLevel(n int) *fakeRepo {
	var questions []entities.Question
	id := 1
	for _, level := range entities.Levels {
		for i := 0; i < n; i++ {
			category := entities.CategoryVocabulary
			if i%2 == 1 {
				category = entities.CategoryGrammar
			}
			questions = append(questions, entities.Question{
				ID:           id,
				Text:         fmt.Sprintf("question %d", id),
				Options:      []string{"a", "b", "c", "d"},
				CorrectIndex: id % 4,
				Level:        level,
				Category:     category,
			})
			id++
		}
	}
	return &fakeRepo{questions: questions}
}
