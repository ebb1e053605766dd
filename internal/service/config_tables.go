package service

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/repository"
)

// This file turns the string-keyed tables from the config file into
// validated, level-keyed ones. Invalid tables are never fatal: they are
// replaced by the built-in defaults with a logged warning.

// parseLevel resolves a config key like "a1" or "B2" to a level.
func parseLevel(key string) (entities.Level, bool) {
	level := entities.Level(strings.ToUpper(strings.TrimSpace(key)))
	return level, level.Valid()
}

// WeightTableFromConfig validates a level→weight table. All four levels
// must be present with positive weights, otherwise the defaults are used.
func WeightTableFromConfig(raw map[string]int, logger *zap.Logger) map[entities.Level]int {
	if len(raw) == 0 {
		return repository.DefaultLevelWeights()
	}

	table := make(map[entities.Level]int, len(entities.Levels))
	for key, weight := range raw {
		level, ok := parseLevel(key)
		if !ok || weight <= 0 {
			logger.Warn("invalid weight table in config, using defaults",
				zap.String("key", key),
				zap.Int("weight", weight),
			)
			return repository.DefaultLevelWeights()
		}
		table[level] = weight
	}

	for _, level := range entities.Levels {
		if _, ok := table[level]; !ok {
			logger.Warn("incomplete weight table in config, using defaults",
				zap.String("missing_level", string(level)),
			)
			return repository.DefaultLevelWeights()
		}
	}

	return table
}

// ThresholdsFromConfig validates a level→upper-bound table for A1, A2 and
// B1 (B2 is everything above the last bound). Bounds must be within 0-100
// and strictly increasing in level order; anything else falls back to the
// defaults, since gaps or overlaps would make level mapping undefined.
func ThresholdsFromConfig(raw map[string]int, logger *zap.Logger) []LevelThreshold {
	if len(raw) == 0 {
		return DefaultThresholds()
	}

	table := make(map[entities.Level]int, len(raw))
	for key, max := range raw {
		level, ok := parseLevel(key)
		if !ok || level == entities.LevelB2 {
			logger.Warn("invalid threshold table in config, using defaults",
				zap.String("key", key),
			)
			return DefaultThresholds()
		}
		table[level] = max
	}

	bounded := []entities.Level{entities.LevelA1, entities.LevelA2, entities.LevelB1}
	thresholds := make([]LevelThreshold, 0, len(bounded))
	prev := -1
	for _, level := range bounded {
		max, ok := table[level]
		if !ok || max <= prev || max > 100 {
			logger.Warn("non-monotonic or incomplete threshold table in config, using defaults",
				zap.String("level", string(level)),
			)
			return DefaultThresholds()
		}
		thresholds = append(thresholds, LevelThreshold{Max: max, Level: level})
		prev = max
	}

	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i].Max < thresholds[j].Max })
	return thresholds
}

// RecommendationsFromConfig merges configured per-level texts over the
// defaults, so a partially filled table still covers every level.
func RecommendationsFromConfig(raw map[string]string, logger *zap.Logger) map[entities.Level]string {
	table := DefaultRecommendations()
	for key, text := range raw {
		level, ok := parseLevel(key)
		if !ok || text == "" {
			logger.Warn("ignoring invalid recommendation entry in config",
				zap.String("key", key),
			)
			continue
		}
		table[level] = text
	}
	return table
}

// QuotasFromConfig validates optional per-level selection quotas. An empty
// result means "no quotas": the selector divides the total evenly.
func QuotasFromConfig(raw map[string]int, logger *zap.Logger) map[entities.Level]int {
	if len(raw) == 0 {
		return nil
	}

	quotas := make(map[entities.Level]int, len(raw))
	for key, count := range raw {
		level, ok := parseLevel(key)
		if !ok || count < 0 {
			logger.Warn("ignoring invalid level quota in config",
				zap.String("key", key),
				zap.Int("count", count),
			)
			continue
		}
		quotas[level] = count
	}

	if len(quotas) == 0 {
		return nil
	}
	return quotas
}
