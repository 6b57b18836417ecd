package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskpoints/internal/model"
)

// TelegramNotifier pushes reminders to the chat a user linked via the API.
// Users without a linked chat are silently skipped.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewTelegramNotifier(token string, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramNotifier{bot: bot, logger: logger}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, user *model.User, text string) error {
	if user.ChatID == nil {
		n.logger.Debug("reminder skipped, no linked chat", slog.Uint64("user", uint64(user.ID)))
		return nil
	}

	msg := tgbotapi.NewMessage(*user.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
