package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"leadbot/internal/form"
	"leadbot/internal/i18n"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		b.logger.Warn("Dropping message without chat", zap.Int("message_id", message.MessageID))
		return
	}
	// Sessions are per private chat, group traffic is not ours
	if !message.Chat.IsPrivate() {
		b.logger.Debug("Ignoring non-private message", zap.Int64("chat_id", message.Chat.ID))
		return
	}

	chatID := message.Chat.ID
	start := time.Now()
	var err error

	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r), zap.Int64("chat_id", chatID))
			b.sendText(chatID, b.table.Text(i18n.DefaultLanguage, i18n.KeyInternalError))
		}
		b.metrics.ObserveHandler("message", start, err)
	}()

	var reply form.Reply
	if message.IsCommand() {
		reply, err = b.handleCommand(ctx, message)
	} else if message.Text == "" {
		reply, err = b.engine.Repeat(ctx, chatID)
	} else {
		reply, err = b.engine.HandleText(ctx, chatID, message.Text)
	}

	b.respond(chatID, reply, err)
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer the callback query to remove loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback query", zap.Error(err))
	}

	if query.Message == nil || query.Message.Chat == nil {
		b.logger.Warn("Dropping callback without message", zap.String("callback_data", query.Data))
		return
	}

	chatID := query.Message.Chat.ID
	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r), zap.Int64("chat_id", chatID))
			b.sendText(chatID, b.table.Text(i18n.DefaultLanguage, i18n.KeyInternalError))
		}
		b.metrics.ObserveHandler("callback", start, err)
	}()

	b.clearInlineKeyboard(chatID, query.Message.MessageID)

	var reply form.Reply
	reply, err = b.engine.HandleChoice(ctx, chatID, query.Data)
	b.respond(chatID, reply, err)
}

// respond sends the reply, or a generic error text when the form failed
func (b *Bot) respond(chatID int64, reply form.Reply, err error) {
	if err != nil {
		b.logger.Error("Failed to handle update", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(chatID, b.table.Text(i18n.DefaultLanguage, i18n.KeyInternalError))
		return
	}
	b.sendReply(chatID, reply)
}
