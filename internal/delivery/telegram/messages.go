// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/infra/postgres/repository"
	"github.com/Evdoha25/timurBot/internal/service"
)

// Message templates.
const (
	msgWelcome = "Привет! Я помогу определить ваш уровень английского языка (A1–B2).\n\n" +
		"Тест состоит из вопросов с выбором ответа: словарный запас и грамматика, " +
		"от простых к сложным. В конце вы получите уровень по шкале CEFR и рекомендацию.\n\n" +
		"Нажмите кнопку ниже или отправьте /test, чтобы начать."

	msgHelp = "Доступные команды:\n\n" +
		"/test — начать тест\n" +
		"/restart — начать тест заново\n" +
		"/cancel — прервать текущий тест\n" +
		"/stats — общая статистика результатов\n" +
		"/export — выгрузить результаты в CSV\n" +
		"/help — помощь"

	msgNoSession = "Активного теста нет или сессия истекла.\n" +
		"Отправьте /test, чтобы начать заново."

	msgAlreadyAnswered  = "Этот ответ уже учтён."
	msgCancelled        = "Тест прерван. Отправьте /test, чтобы начать заново."
	msgTestUnavailable  = "Не удалось запустить тест, попробуйте позже."
	msgStatsUnavailable = "Статистика пока недоступна."
	msgStatsDisabled    = "Сбор статистики не настроен."
	msgReloadDone       = "Банк вопросов перезагружен."
	msgReloadFailed     = "Не удалось перезагрузить банк вопросов, действует прежний."
	msgUnknownCommand   = "Неизвестная команда. Отправьте /help для списка команд."
)

// Level display names for result messages.
var levelTitles = map[entities.Level]string{
	entities.LevelA1: "A1 — начальный",
	entities.LevelA2: "A2 — элементарный",
	entities.LevelB1: "B1 — средний",
	entities.LevelB2: "B2 — выше среднего",
}

var categoryTitles = map[entities.Category]string{
	entities.CategoryVocabulary: "Словарный запас",
	entities.CategoryGrammar:    "Грамматика",
}

// newHTMLMessage creates a message with HTML parse mode.
func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// newPlainMessage creates a plain message without parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// esc escapes plain text for HTML parse mode.
func esc(s string) string {
	return html.EscapeString(s)
}

// formatQuestion renders a next-question payload with progress.
func formatQuestion(view *service.QuestionView) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>Вопрос %d/%d</b>\n\n", view.Number, view.Total))
	sb.WriteString(esc(view.Question.Text))
	sb.WriteString("\n\nВыберите ответ:")

	return sb.String()
}

// formatFeedback renders per-answer feedback.
func formatFeedback(outcome *service.AnswerOutcome) string {
	if outcome.IsCorrect {
		return "✅ Верно!"
	}
	return fmt.Sprintf("❌ Неверно. Правильный ответ: <b>%s</b>", esc(outcome.CorrectOption))
}

// formatAssessment renders the final assessment.
func formatAssessment(a *entities.Assessment) string {
	var sb strings.Builder

	sb.WriteString("🎉 <b>Тест завершён!</b>\n\n")
	sb.WriteString(fmt.Sprintf("Ваш уровень: <b>%s</b>\n", esc(levelTitles[a.Level])))
	sb.WriteString(fmt.Sprintf("Результат: <b>%d%%</b> (%d из %d баллов)\n",
		a.PercentageScore, a.EarnedWeight, a.TotalWeight))

	sb.WriteString("\nПо категориям:\n")
	for _, category := range entities.Categories {
		entry, ok := a.ByCategory[category]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: %d/%d\n", categoryTitles[category], entry.Correct, entry.Total))
	}

	sb.WriteString("\nПо уровням:\n")
	for _, level := range entities.Levels {
		entry, ok := a.ByLevel[level]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: %d/%d\n", level, entry.Correct, entry.Total))
	}

	sb.WriteString(fmt.Sprintf("\n💡 %s", esc(a.Recommendation)))

	return sb.String()
}

// formatStats renders aggregate monitoring stats.
func formatStats(stats *repository.AggregateStats) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Статистика</b>\n\n")
	sb.WriteString(fmt.Sprintf("Всего тестов: <b>%d</b>\n", stats.TotalTests))
	sb.WriteString(fmt.Sprintf("Средний результат: <b>%d%%</b>\n", stats.AveragePercentage))

	if len(stats.LevelCounts) > 0 {
		sb.WriteString("\nПо уровням:\n")
		for _, level := range entities.Levels {
			count, ok := stats.LevelCounts[level]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("• %s: %d\n", level, count))
		}
	}

	return sb.String()
}
