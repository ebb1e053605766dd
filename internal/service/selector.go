package service

import (
	"math/rand"
	"time"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
)

// QuestionSelector draws randomized, non-repeating question subsets from
// the repository for a new test.
type QuestionSelector struct {
	repo QuestionRepo
	rng  *rand.Rand
}

// NewQuestionSelector creates a selector. A nil rng falls back to a
// time-seeded source; tests pass a seeded one for determinism.
func NewQuestionSelector(repo QuestionRepo, rng *rand.Rand) *QuestionSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionSelector{repo: repo, rng: rng}
}

// Select picks questions for a test. With explicit per-level quotas it
// draws that many uniformly at random without replacement from each
// level's pool; otherwise total is divided evenly across the four levels
// (floor division, the remainder is dropped). A level contributes fewer
// questions only when its pool is smaller than its quota. The combined
// result is shuffled again so level order is not observable.
func (s *QuestionSelector) Select(total int, quotas map[entities.Level]int) []entities.Question {
	if total <= 0 && len(quotas) == 0 {
		return nil
	}

	if len(quotas) == 0 {
		perLevel := total / len(entities.Levels)
		quotas = make(map[entities.Level]int, len(entities.Levels))
		for _, level := range entities.Levels {
			quotas[level] = perLevel
		}
	}

	var out []entities.Question
	for _, level := range entities.Levels {
		quota := quotas[level]
		if quota <= 0 {
			continue
		}
		out = append(out, s.drawFromLevel(level, quota)...)
	}

	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

// drawFromLevel shuffles a copy of the level pool and truncates it to
// count. The repository pool itself is never reordered.
func (s *QuestionSelector) drawFromLevel(level entities.Level, count int) []entities.Question {
	pool := s.repo.ByLevel(level)

	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}
