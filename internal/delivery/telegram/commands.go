package telegram

import (
	"bytes"
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const statsTimeout = 10 * time.Second

// handleStats shows aggregate counts over all stored results.
func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	if h.stats == nil {
		h.send(newPlainMessage(chatID, msgStatsDisabled))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.logger.Error("failed to load stats", zap.Error(err))
		h.send(newPlainMessage(chatID, msgStatsUnavailable))
		return
	}

	h.send(newHTMLMessage(chatID, formatStats(stats)))
}

// handleExport sends the stored results as a CSV document.
func (h *Handler) handleExport(ctx context.Context, chatID int64) {
	if h.stats == nil {
		h.send(newPlainMessage(chatID, msgStatsDisabled))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := h.stats.ExportCSV(ctx, &buf); err != nil {
		h.logger.Error("failed to export results", zap.Error(err))
		h.send(newPlainMessage(chatID, msgStatsUnavailable))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "results.csv",
		Bytes: buf.Bytes(),
	})
	h.send(doc)
}

// handleReload re-reads the question bank; on failure the previous bank
// stays in place.
func (h *Handler) handleReload(chatID int64) {
	if err := h.reloader.Reload(); err != nil {
		h.logger.Error("failed to reload question bank", zap.Error(err))
		h.send(newPlainMessage(chatID, msgReloadFailed))
		return
	}

	h.send(newPlainMessage(chatID, msgReloadDone))
}
