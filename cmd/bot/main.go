package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Evdoha25/timurBot/internal/config"
	"github.com/Evdoha25/timurBot/internal/delivery/telegram"
	"github.com/Evdoha25/timurBot/internal/infra/postgres"
	pgrepo "github.com/Evdoha25/timurBot/internal/infra/postgres/repository"
	"github.com/Evdoha25/timurBot/internal/logger"
	"github.com/Evdoha25/timurBot/internal/repository"
	"github.com/Evdoha25/timurBot/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("failed to create bot api", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Запустить бота",
		},
		{
			Command:     "test",
			Description: "Начать тест на уровень английского",
		},
		{
			Command:     "restart",
			Description: "Начать тест заново",
		},
		{
			Command:     "cancel",
			Description: "Прервать текущий тест",
		},
		{
			Command:     "stats",
			Description: "Статистика результатов",
		},
		{
			Command:     "help",
			Description: "Помощь",
		},
	}

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("failed to set bot commands", zap.Error(err))
	}

	zl.Info("authorized", zap.String("account", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The weight table is shared by answer checking and final scoring.
	weights := service.WeightTableFromConfig(cfg.Scoring.Weights, zl)

	// An invalid question bank aborts startup: running with partial data
	// is worse than not running.
	questionRepo, err := repository.NewQuestionRepository(cfg.QuestionsJSONPath, weights)
	if err != nil {
		zl.Fatal("failed to load question bank", zap.Error(err))
	}
	zl.Info("question bank loaded", zap.Int("questions", questionRepo.Count()))

	store := service.NewSessionStore(cfg.Quiz.SessionTimeout, nil)
	selector := service.NewQuestionSelector(questionRepo, nil)
	assessor := service.NewAssessor(
		service.ThresholdsFromConfig(cfg.Scoring.Thresholds, zl),
		weights,
		service.RecommendationsFromConfig(cfg.Scoring.Recommendations, zl),
	)

	// The monitoring database is optional: without it results are simply
	// not forwarded and /stats is disabled.
	var (
		sink  service.ResultSink
		stats telegram.StatsService
	)
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			zl.Warn("monitoring database unavailable, results will not be stored", zap.Error(err))
		} else {
			defer pool.Close()

			resultRepo := pgrepo.NewResultRepository(pool)
			if err = resultRepo.EnsureSchema(ctx); err != nil {
				zl.Warn("failed to prepare monitoring schema", zap.Error(err))
			} else {
				sink = resultRepo
				stats = resultRepo
			}
		}
	}

	quiz := service.NewQuizService(
		questionRepo,
		selector,
		store,
		assessor,
		sink,
		zl,
		nil,
		cfg.Quiz.TotalQuestions,
		service.QuotasFromConfig(cfg.Quiz.LevelQuotas, zl),
	)

	// Expired sessions are purged on a background schedule.
	sweeper := cron.New()
	sweep := func() {
		if removed := store.Sweep(); removed > 0 {
			zl.Debug("expired sessions purged", zap.Int("count", removed))
		}
	}
	if _, err = sweeper.AddFunc(cfg.Quiz.SweepSchedule, sweep); err != nil {
		zl.Warn("invalid sweep schedule, falling back to @every 1m",
			zap.String("schedule", cfg.Quiz.SweepSchedule),
			zap.Error(err),
		)
		_, _ = sweeper.AddFunc("@every 1m", sweep)
	}
	sweeper.Start()
	defer sweeper.Stop()

	handler := telegram.NewHandler(bot, zl, quiz, stats, questionRepo)
	if err = handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("telegram handler stopped with error", zap.Error(err))
	}

	zl.Info("shutdown signal received")
}
