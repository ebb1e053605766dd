package entities

import "time"

// BreakdownEntry counts correct answers out of total for one breakdown key.
type BreakdownEntry struct {
	Correct int
	Total   int
}

// Percent returns the rounded correctness percentage, 0 for an empty entry.
func (b BreakdownEntry) Percent() int {
	if b.Total == 0 {
		return 0
	}
	return (b.Correct*100 + b.Total/2) / b.Total
}

// Assessment is the derived outcome of a completed test session.
// It is computed on demand and never stored.
type Assessment struct {
	Level           Level  // determined CEFR level
	PercentageScore int    // rounded weighted score, 0-100
	EarnedWeight    int    // weight sum over correct answers
	TotalWeight     int    // weight sum over all matched answers
	Recommendation  string // static advice for the level
	Skipped         int    // answers dropped for unknown question ids

	// Correct/total counts keyed by category and by level.
	ByCategory map[Category]BreakdownEntry
	ByLevel    map[Level]BreakdownEntry
}

// TestResult is the flattened record handed to the monitoring collector
// after each completed test.
type TestResult struct {
	UserID            int64
	Username          string
	Level             Level
	PercentageScore   int
	VocabularyPercent int
	GrammarPercent    int
	Duration          time.Duration
	CompletedAt       time.Time
}
