package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string  `mapstructure:"env"`                 // current application environment (local, dev, prod etc)
	TelegramAPIToken  string  `mapstructure:"-"`                   // Telegram API token loaded from environment
	QuestionsJSONPath string  `mapstructure:"questions_json_path"` // path to JSON file with the question bank
	Quiz              Quiz    `mapstructure:"quiz"`                // quiz lifecycle settings
	Scoring           Scoring `mapstructure:"scoring"`             // scoring and leveling tables
	DB                DB      `mapstructure:"database"`            // monitoring database configuration section
}

// Quiz contains test lifecycle parameters.
type Quiz struct {
	TotalQuestions int            `mapstructure:"total_questions"` // question count per test when no quotas given
	LevelQuotas    map[string]int `mapstructure:"level_quotas"`    // optional explicit per-level question counts
	SessionTimeout time.Duration  `mapstructure:"session_timeout"` // inactivity timeout before a session expires
	SweepSchedule  string         `mapstructure:"sweep_schedule"`  // cron spec for the expired-session sweep
}

// Scoring contains the configurable scoring tables. Invalid tables fall
// back to built-in defaults at wiring time, they are never fatal.
type Scoring struct {
	Weights         map[string]int    `mapstructure:"weights"`         // level -> question weight
	Thresholds      map[string]int    `mapstructure:"thresholds"`      // level -> inclusive percentage upper bound
	Recommendations map[string]string `mapstructure:"recommendations"` // level -> advice text
}

// DB contains monitoring database configuration parameters. The database
// is optional: without DATABASE_URL results are simply not forwarded.
type DB struct {
	URL             string        `mapstructure:"-"`                 // connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Enabled reports whether a monitoring database is configured.
func (db DB) Enabled() bool {
	return db.URL != ""
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("questions_json_path", "assets/data/questions.json")
	v.SetDefault("quiz.total_questions", 20)
	v.SetDefault("quiz.session_timeout", "30m")
	v.SetDefault("quiz.sweep_schedule", "@every 1m")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	// The monitoring database is optional by design.
	cfg.DB.URL = v.GetString("database_url")

	if cfg.Quiz.TotalQuestions <= 0 {
		cfg.Quiz.TotalQuestions = 20
	}
	if cfg.Quiz.SessionTimeout <= 0 {
		cfg.Quiz.SessionTimeout = 30 * time.Minute
	}

	return &cfg, nil
}
