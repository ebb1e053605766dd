package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/infra/postgres"
)

// ResultRepository persists flattened test results for monitoring and
// serves the read side: aggregate stats and CSV export.
type ResultRepository struct {
	db postgres.DBTX
}

// NewResultRepository creates a new ResultRepository with the provided database pool.
func NewResultRepository(db postgres.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// EnsureSchema creates the results table if it does not exist yet.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS test_results (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL,
			percentage_score INT NOT NULL,
			vocabulary_percent INT NOT NULL,
			grammar_percent INT NOT NULL,
			duration_seconds INT NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure test_results schema: %w", err)
	}
	return nil
}

// Save inserts one completed test result.
func (r *ResultRepository) Save(ctx context.Context, result *entities.TestResult) error {
	query := `
		INSERT INTO test_results (
			user_id, username, level, percentage_score,
			vocabulary_percent, grammar_percent, duration_seconds, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		result.UserID,
		result.Username,
		string(result.Level),
		result.PercentageScore,
		result.VocabularyPercent,
		result.GrammarPercent,
		int(result.Duration.Seconds()),
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save test result: %w", err)
	}

	return nil
}

// AggregateStats is the read-side summary over all stored results.
type AggregateStats struct {
	TotalTests        int
	AveragePercentage int
	LevelCounts       map[entities.Level]int
}

// Stats computes simple aggregate counts over all stored results.
func (r *ResultRepository) Stats(ctx context.Context) (*AggregateStats, error) {
	stats := &AggregateStats{
		LevelCounts: make(map[entities.Level]int),
	}

	query := `
		SELECT COUNT(*), COALESCE(ROUND(AVG(percentage_score)), 0)::int
		FROM test_results
	`
	err := r.db.QueryRow(ctx, query).Scan(&stats.TotalTests, &stats.AveragePercentage)
	if err != nil {
		return nil, fmt.Errorf("aggregate test results: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT level, COUNT(*) FROM test_results GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("count results by level: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var count int
		if err = rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		stats.LevelCounts[entities.Level(level)] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate level counts: %w", err)
	}

	return stats, nil
}

// ExportCSV streams every stored result as CSV to w, newest first.
func (r *ResultRepository) ExportCSV(ctx context.Context, w io.Writer) error {
	query := `
		SELECT user_id, username, level, percentage_score,
		       vocabulary_percent, grammar_percent, duration_seconds, completed_at
		FROM test_results
		ORDER BY completed_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query test results: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	header := []string{
		"user_id", "username", "level", "percentage_score",
		"vocabulary_percent", "grammar_percent", "duration_seconds", "completed_at",
	}
	if err = cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for rows.Next() {
		var (
			userID          int64
			username, level string
			percentage      int
			vocab           int
			grammar         int
			durationSeconds int
			completedAt     time.Time
		)
		if err = rows.Scan(&userID, &username, &level, &percentage, &vocab, &grammar, &durationSeconds, &completedAt); err != nil {
			return fmt.Errorf("scan test result: %w", err)
		}

		record := []string{
			strconv.FormatInt(userID, 10),
			username,
			level,
			strconv.Itoa(percentage),
			strconv.Itoa(vocab),
			strconv.Itoa(grammar),
			strconv.Itoa(durationSeconds),
			completedAt.UTC().Format(time.RFC3339),
		}
		if err = cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate test results: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
