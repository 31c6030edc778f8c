package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"leadbot/internal/i18n"
	"leadbot/internal/metrics"
)

// NewClient connects to the Bot API and checks the token
func NewClient(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))
	return api, nil
}

// NewBot creates a new Telegram bot
func NewBot(api botAPI, engine conversation, table *i18n.Table, m *metrics.Metrics, logger *zap.Logger) *Bot {
	return &Bot{
		api:     api,
		engine:  engine,
		table:   table,
		metrics: m,
		logger:  logger,
	}
}
