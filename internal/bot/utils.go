package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"leadbot/internal/form"
)

const choicesPerRow = 3

// sendReply sends a form reply with its keyboard
func (b *Bot) sendReply(chatID int64, reply form.Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup := replyMarkup(reply); markup != nil {
		msg.ReplyMarkup = markup
	}
	b.sendMessage(msg)
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

// replyMarkup picks the keyboard for a reply: inline buttons, a reply
// keyboard with choices and navigation, or keyboard removal
func replyMarkup(reply form.Reply) interface{} {
	switch {
	case len(reply.Inline) > 0:
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(reply.Inline))
		for _, btn := range reply.Inline {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		return tgbotapi.NewInlineKeyboardMarkup(row)

	case len(reply.Choices) > 0 || len(reply.Navigation) > 0:
		var rows [][]tgbotapi.KeyboardButton
		var current []tgbotapi.KeyboardButton
		for i, btn := range reply.Choices {
			current = append(current, tgbotapi.NewKeyboardButton(btn.Label))
			if len(current) == choicesPerRow || i == len(reply.Choices)-1 {
				rows = append(rows, current)
				current = nil
			}
		}

		var nav []tgbotapi.KeyboardButton
		for _, btn := range reply.Navigation {
			nav = append(nav, tgbotapi.NewKeyboardButton(btn.Label))
		}
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
		return tgbotapi.NewReplyKeyboard(rows...)

	case reply.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}
