package bot

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const pollTimeout = 60

// Start polls for updates until ctx is cancelled. Errors, including 409
// Conflict from a second poller or a leftover webhook, are retried with
// exponential backoff.
func (b *Bot) Start(ctx context.Context) error {
	return b.poll(ctx, newPollBackOff())
}

func newPollBackOff() backoff.BackOff {
	retry := backoff.NewExponentialBackOff()
	retry.MaxInterval = time.Minute
	retry.MaxElapsedTime = 0
	return retry
}

func (b *Bot) poll(ctx context.Context, retry backoff.BackOff) error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	b.logger.Info("Bot started successfully. Waiting for updates...")
	for {
		if ctx.Err() != nil {
			b.logger.Info("Polling stopped")
			return nil
		}

		updates, err := b.api.GetUpdates(u)
		if err != nil {
			wait := retry.NextBackOff()
			if isConflict(err) {
				b.logger.Warn("Polling conflict, another instance or webhook is active",
					zap.Duration("retry_in", wait))
			} else {
				b.logger.Error("Failed to get updates", zap.Error(err), zap.Duration("retry_in", wait))
			}

			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()

		for _, update := range updates {
			if update.UpdateID >= u.Offset {
				u.Offset = update.UpdateID + 1
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func isConflict(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// StartWebhook registers webhookURL with Telegram
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return err
	}
	webhookConfig.MaxConnections = 40
	webhookConfig.DropPendingUpdates = true

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	// Get webhook info to verify
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}
	return nil
}

// HandleUpdate processes a single update from polling or the webhook
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		b.logger.Debug("Ignoring update", zap.Int("update_id", update.UpdateID))
	}
}
