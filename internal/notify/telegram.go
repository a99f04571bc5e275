package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"otpdesk/internal/config"
)

// Notifier pushes admin notifications to a Telegram chat. A nil Notifier
// is valid and does nothing, so callers never need to branch on whether
// notifications are configured.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// New creates a Notifier, or (nil, nil) when notifications are disabled.
func New(cfg *config.Config, logger *zap.Logger) (*Notifier, error) {
	if !cfg.Notifications.Enabled || cfg.Notifications.TelegramBotToken == "" {
		logger.Info("Telegram notifications are disabled")
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.Notifications.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram notifier authorized", zap.String("username", api.Self.UserName))

	return &Notifier{
		api:    api,
		chatID: cfg.Notifications.ChatID,
		logger: logger,
	}, nil
}

// CommentPosted tells the admin chat about a new comment. Errors are
// logged and swallowed.
func (n *Notifier) CommentPosted(username, text string) {
	if n == nil {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("New comment from %s:\n%s", username, text))
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send comment notification", zap.Error(err))
	}
}
