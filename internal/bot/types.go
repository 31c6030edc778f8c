package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"leadbot/internal/form"
	"leadbot/internal/i18n"
	"leadbot/internal/metrics"
)

// botAPI is the part of *tgbotapi.BotAPI the bot uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
}

// conversation drives the lead form for one chat at a time
type conversation interface {
	Start(ctx context.Context, id int64) (form.Reply, error)
	HandleText(ctx context.Context, id int64, text string) (form.Reply, error)
	HandleChoice(ctx context.Context, id int64, data string) (form.Reply, error)
	GoBack(ctx context.Context, id int64) (form.Reply, error)
	Cancel(ctx context.Context, id int64) (form.Reply, error)
	Repeat(ctx context.Context, id int64) (form.Reply, error)
	Help(ctx context.Context, id int64) (form.Reply, error)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api     botAPI
	engine  conversation
	table   *i18n.Table
	metrics *metrics.Metrics
	logger  *zap.Logger
}
