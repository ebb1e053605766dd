package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Evdoha25/timurBot/internal/service"
)

// buildOptionsKeyboard builds the four answer buttons for a question,
// one option per row.
func buildOptionsKeyboard(view *service.QuestionView) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Question.Options))
	for i, option := range view.Question.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, buildAnswerCallback(view.Question.ID, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildStartKeyboard builds the single "start test" button under the welcome message.
func buildStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Начать тест", buildTestCallback(testStart)),
		),
	)
}

// buildRestartKeyboard builds the "take the test again" button under the final assessment.
func buildRestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Пройти ещё раз", buildTestCallback(testRestart)),
		),
	)
}
