package service

import (
	"context"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/repository"
)

// QuestionRepo is the question bank as seen by the services.
type QuestionRepo interface {
	ByID(id int) (entities.Question, error)
	ByLevel(level entities.Level) []entities.Question
	ByCategory(category entities.Category) []entities.Question
	CheckAnswer(questionID, selectedIndex int) (repository.AnswerCheck, error)
	Count() int
}

// ResultSink receives flattened results of completed tests. Implementations
// must tolerate being unreachable; the quiz flow never waits on them.
type ResultSink interface {
	Save(ctx context.Context, result *entities.TestResult) error
}
