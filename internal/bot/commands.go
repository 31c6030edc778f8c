package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"leadbot/internal/form"
)

// handleCommand maps slash commands onto form operations
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) (form.Reply, error) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		return b.engine.Start(ctx, chatID)
	case "cancel":
		return b.engine.Cancel(ctx, chatID)
	case "back":
		return b.engine.GoBack(ctx, chatID)
	case "skip":
		return b.engine.HandleText(ctx, chatID, form.SkipCommand)
	case "help":
		return b.engine.Help(ctx, chatID)
	default:
		b.logger.Debug("Unknown command", zap.String("command", message.Command()), zap.Int64("chat_id", chatID))
		return b.engine.Help(ctx, chatID)
	}
}
