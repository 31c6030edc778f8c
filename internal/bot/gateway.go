package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gateway delivers lead notifications to the managers' group chat
type Gateway struct {
	api botAPI
}

func NewGateway(api botAPI) *Gateway {
	return &Gateway{api: api}
}

// SendToGroup sends text to chatID as a plain message
func (g *Gateway) SendToGroup(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send to chat %d: %w", chatID, err)
	}
	return nil
}
