package telegram

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Evdoha25/timurBot/internal/repository"
	"github.com/Evdoha25/timurBot/internal/service"
)

func (h *Handler) handleCallback(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		h.ack(query.ID, "")
		return
	}

	data := decodeCallback(query.Data)

	switch data.Action {
	case actionAnswer:
		h.handleAnswerCallback(query, data.Params)

	case actionTest:
		h.ack(query.ID, "")
		restart := len(data.Params) > 0 && data.Params[0] == testRestart
		h.startTest(query.Message.Chat.ID, query.From.ID, query.From.UserName, restart)

	default:
		h.logger.Debug("unknown callback action", zap.String("data", query.Data))
		h.ack(query.ID, "")
	}
}

// handleAnswerCallback records one answer and sends either the next
// question or the final assessment. A double-tap on the same button is
// acknowledged without recording anything twice.
func (h *Handler) handleAnswerCallback(query *tgbotapi.CallbackQuery, params []string) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	questionID, optionIndex, ok := parseAnswerParams(params)
	if !ok {
		h.logger.Warn("malformed answer callback", zap.String("data", query.Data))
		h.ack(query.ID, "")
		return
	}

	outcome, err := h.quiz.Answer(userID, questionID, optionIndex)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaleAnswer):
			h.ack(query.ID, msgAlreadyAnswered)

		case errors.Is(err, service.ErrNoActiveSession),
			errors.Is(err, service.ErrTestNotStarted),
			errors.Is(err, repository.ErrQuestionNotFound):
			h.ack(query.ID, "")
			h.send(newPlainMessage(chatID, msgNoSession))

		default:
			h.logger.Error("failed to record answer",
				zap.Int64("user_id", userID),
				zap.Int("question_id", questionID),
				zap.Error(err),
			)
			h.ack(query.ID, "")
		}
		return
	}

	h.ack(query.ID, "")

	// Drop the keyboard from the answered question so it cannot be
	// tapped again.
	empty := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow())
	empty.InlineKeyboard = [][]tgbotapi.InlineKeyboardButton{}
	h.send(tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, empty))

	h.send(newHTMLMessage(chatID, formatFeedback(outcome)))

	if outcome.Assessment != nil {
		msg := newHTMLMessage(chatID, formatAssessment(outcome.Assessment))
		msg.ReplyMarkup = buildRestartKeyboard()
		h.send(msg)
		return
	}

	if outcome.Next != nil {
		h.sendQuestion(chatID, outcome.Next)
	}
}

// ack answers a callback query, optionally with a toast text.
func (h *Handler) ack(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.bot.Request(callback); err != nil {
		h.logger.Debug("failed to answer callback", zap.Error(err))
	}
}
