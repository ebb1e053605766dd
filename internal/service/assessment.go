package service

import (
	"math"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/repository"
)

// LevelThreshold is one inclusive upper bound in the level scale.
// A percentage p maps to the first threshold with p <= Max.
type LevelThreshold struct {
	Max   int
	Level entities.Level
}

// DefaultThresholds is the built-in level scale: <=25 A1, <=50 A2,
// <=75 B1, above B2.
func DefaultThresholds() []LevelThreshold {
	return []LevelThreshold{
		{Max: 25, Level: entities.LevelA1},
		{Max: 50, Level: entities.LevelA2},
		{Max: 75, Level: entities.LevelB1},
	}
}

// DefaultRecommendations returns the built-in per-level advice texts.
func DefaultRecommendations() map[entities.Level]string {
	return map[entities.Level]string{
		entities.LevelA1: "Начните с основ: базовая лексика, простые фразы и настоящее время.",
		entities.LevelA2: "Закрепляйте повседневную лексику и прошедшее время, больше простого чтения.",
		entities.LevelB1: "Расширяйте словарный запас, работайте со сложными временами и слушайте подкасты.",
		entities.LevelB2: "Отличный результат! Читайте оригинальную литературу и практикуйте свободную речь.",
	}
}

// Assessor computes the final assessment of a completed session.
// It is pure: no side effects, identical input gives identical output.
type Assessor struct {
	thresholds      []LevelThreshold
	weights         map[entities.Level]int
	recommendations map[entities.Level]string
}

// NewAssessor creates an assessor. Nil tables fall back to the built-in
// defaults; config tables are validated before they reach here.
func NewAssessor(
	thresholds []LevelThreshold,
	weights map[entities.Level]int,
	recommendations map[entities.Level]string,
) *Assessor {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	if weights == nil {
		weights = repository.DefaultLevelWeights()
	}
	if len(recommendations) == 0 {
		recommendations = DefaultRecommendations()
	}
	return &Assessor{
		thresholds:      thresholds,
		weights:         weights,
		recommendations: recommendations,
	}
}

// Assess scores a completed session against the question set it was drawn
// from. Answers are matched to questions by id; an answer whose question
// id is absent from questions is skipped and contributes to neither
// totalWeight nor earnedWeight (counted in Skipped).
func (a *Assessor) Assess(session *entities.Session, questions []entities.Question) *entities.Assessment {
	byID := make(map[int]entities.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := &entities.Assessment{
		ByCategory: make(map[entities.Category]entities.BreakdownEntry),
		ByLevel:    make(map[entities.Level]entities.BreakdownEntry),
	}

	for _, answer := range session.Answers {
		q, ok := byID[answer.QuestionID]
		if !ok {
			result.Skipped++
			continue
		}

		weight := repository.ResolveWeight(q, a.weights)
		result.TotalWeight += weight
		if answer.IsCorrect {
			result.EarnedWeight += weight
		}

		cat := result.ByCategory[q.Category]
		cat.Total++
		if answer.IsCorrect {
			cat.Correct++
		}
		result.ByCategory[q.Category] = cat

		lvl := result.ByLevel[q.Level]
		lvl.Total++
		if answer.IsCorrect {
			lvl.Correct++
		}
		result.ByLevel[q.Level] = lvl
	}

	result.PercentageScore = percentage(result.EarnedWeight, result.TotalWeight)
	result.Level = a.DetermineLevel(result.PercentageScore)
	result.Recommendation = a.Recommendation(result.Level)

	return result
}

// DetermineLevel maps a percentage to a CEFR level using the ordered
// inclusive-upper-bound thresholds. Anything above the last bound is B2.
func (a *Assessor) DetermineLevel(percent int) entities.Level {
	for _, t := range a.thresholds {
		if percent <= t.Max {
			return t.Level
		}
	}
	return entities.LevelB2
}

// Recommendation returns the advice text for a level.
func (a *Assessor) Recommendation(level entities.Level) string {
	if text, ok := a.recommendations[level]; ok {
		return text
	}
	return DefaultRecommendations()[level]
}

// percentage returns round(100*earned/total), 0 for an empty test.
func percentage(earned, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(earned) / float64(total)))
}
