package telegram

import (
	"context"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Evdoha25/timurBot/internal/infra/postgres/repository"
	"github.com/Evdoha25/timurBot/internal/service"
)

// QuizService drives the assessment lifecycle for the handler.
type QuizService interface {
	Start(userID int64, username string) (*service.QuestionView, error)
	Restart(userID int64, username string) (*service.QuestionView, error)
	Answer(userID int64, questionID, selectedIndex int) (*service.AnswerOutcome, error)
	Cancel(userID int64)
}

// StatsService serves the monitoring read side. It is nil when no
// monitoring database is configured.
type StatsService interface {
	Stats(ctx context.Context) (*repository.AggregateStats, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// BankReloader re-reads the question bank on demand.
type BankReloader interface {
	Reload() error
}

type Handler struct {
	bot      *tgbotapi.BotAPI
	logger   *zap.Logger
	quiz     QuizService
	stats    StatsService
	reloader BankReloader
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	quiz QuizService,
	stats StatsService,
	reloader BankReloader,
) *Handler {
	return &Handler{
		bot:      bot,
		logger:   logger,
		quiz:     quiz,
		stats:    stats,
		reloader: reloader,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	if !update.Message.IsCommand() {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID

	switch update.Message.Command() {
	case "start":
		msg := newPlainMessage(chatID, msgWelcome)
		msg.ReplyMarkup = buildStartKeyboard()
		h.send(msg)

	case "test":
		h.startTest(chatID, from.ID, from.UserName, false)

	case "restart":
		h.startTest(chatID, from.ID, from.UserName, true)

	case "cancel":
		h.quiz.Cancel(from.ID)
		h.send(newPlainMessage(chatID, msgCancelled))

	case "stats":
		h.handleStats(ctx, chatID)

	case "export":
		h.handleExport(ctx, chatID)

	case "reload":
		h.handleReload(chatID)

	case "help":
		h.send(newPlainMessage(chatID, msgHelp))

	default:
		h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

// startTest begins (or restarts) a test and sends the first question.
func (h *Handler) startTest(chatID, userID int64, username string, restart bool) {
	var (
		view *service.QuestionView
		err  error
	)
	if restart {
		view, err = h.quiz.Restart(userID, username)
	} else {
		view, err = h.quiz.Start(userID, username)
	}
	if err != nil {
		h.logger.Error("failed to start test",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newPlainMessage(chatID, msgTestUnavailable))
		return
	}

	h.sendQuestion(chatID, view)
}

// sendQuestion sends a question message with its options keyboard.
func (h *Handler) sendQuestion(chatID int64, view *service.QuestionView) {
	msg := newHTMLMessage(chatID, formatQuestion(view))
	msg.ReplyMarkup = buildOptionsKeyboard(view)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
