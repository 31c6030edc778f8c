package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// clearInlineKeyboard removes the buttons of an answered message so the
// same choice cannot be pressed twice
func (b *Bot) clearInlineKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := b.api.Request(edit); err != nil {
		b.logger.Debug("Failed to clear inline keyboard", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
