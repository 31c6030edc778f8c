package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadbot/internal/form"
	"leadbot/internal/i18n"
	"leadbot/internal/models"
	"leadbot/internal/sink"
	"leadbot/internal/storage/memory"
)

// fakeAPI records everything the bot sends instead of calling Telegram
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error

	getUpdates func(call int, config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	calls      int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.calls++
	return f.getUpdates(f.calls, config)
}

func (f *fakeAPI) GetWebhookInfo() (tgbotapi.WebhookInfo, error) {
	return tgbotapi.WebhookInfo{URL: "https://bot.example.com/telegram-webhook"}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

type recordingSink struct {
	records []models.Record
}

func (s *recordingSink) Submit(ctx context.Context, record models.Record) sink.Outcome {
	s.records = append(s.records, record)
	return sink.Outcome{ChatNotified: true, Persisted: true}
}

const userChat int64 = 456

func newTestBot(opts form.Options) (*Bot, *fakeAPI, *recordingSink) {
	api := &fakeAPI{}
	rec := &recordingSink{}
	table := i18n.New()
	opts.CountryCode = "998"
	engine := form.NewEngine(form.DefaultFields(opts), table, memory.NewSessionStore(time.Hour), rec, nil, zap.NewNop())
	return NewBot(api, engine, table, nil, zap.NewNop()), api, rec
}

func textMessage(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 123},
		Chat:      &tgbotapi.Chat{ID: userChat, Type: "private"},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return msg
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: 123},
		Message: &tgbotapi.Message{
			MessageID: 99,
			Chat:      &tgbotapi.Chat{ID: userChat, Type: "private"},
		},
		Data: data,
	}
}

func (b *Bot) say(texts ...string) {
	for _, text := range texts {
		b.HandleUpdate(context.Background(), tgbotapi.Update{Message: textMessage(text)})
	}
}

func TestBot_StartShowsLanguageKeyboard(t *testing.T) {
	b, api, _ := newTestBot(form.Options{})

	b.say("/start")

	msg := api.last(t)
	assert.Equal(t, userChat, msg.ChatID)
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyChooseLanguage), msg.Text)

	keyboard, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok, "expected reply keyboard, got %T", msg.ReplyMarkup)
	require.Len(t, keyboard.Keyboard, 2)
	assert.Equal(t, "Русский", keyboard.Keyboard[0][0].Text)
	assert.Equal(t, "O'zbekcha", keyboard.Keyboard[0][1].Text)
	assert.Equal(t, "Отмена", keyboard.Keyboard[1][0].Text)
}

func TestBot_FullConversation(t *testing.T) {
	b, api, rec := newTestBot(form.Options{})

	b.say("/start", "Русский", "Иван Иванов", "901234567", "Acme")

	tariffs, ok := api.last(t).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "Старт", tariffs.Keyboard[0][0].Text)

	b.say("Старт")

	done := api.last(t)
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyThankYou), done.Text)
	assert.IsType(t, tgbotapi.ReplyKeyboardRemove{}, done.ReplyMarkup)

	require.Len(t, rec.records, 1)
	assert.Equal(t, "+998901234567", rec.records[0].Value(form.FieldPhone))
}

func TestBot_ConfirmThroughCallbacks(t *testing.T) {
	b, api, rec := newTestBot(form.Options{Confirm: true})

	b.say("/start", "ru", "Иван Иванов")

	confirm := api.last(t)
	inline, ok := confirm.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "expected inline keyboard, got %T", confirm.ReplyMarkup)
	require.Len(t, inline.InlineKeyboard[0], 2)
	require.NotNil(t, inline.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, form.DataConfirmYes, *inline.InlineKeyboard[0][0].CallbackData)

	b.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callback(form.DataConfirmYes)})

	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyAskPhone), api.last(t).Text)

	// The callback was answered and its buttons removed
	var answered, cleared bool
	for _, r := range api.requests {
		switch c := r.(type) {
		case tgbotapi.CallbackConfig:
			answered = c.CallbackQueryID == "cb-1"
		case tgbotapi.EditMessageReplyMarkupConfig:
			cleared = c.MessageID == 99
		}
	}
	assert.True(t, answered)
	assert.True(t, cleared)
	assert.Empty(t, rec.records)
}

func TestBot_Commands(t *testing.T) {
	b, api, _ := newTestBot(form.Options{AllowBack: true, AskEmail: true})

	b.say("/help")
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyHelp), api.last(t).Text)

	b.say("/start", "ru", "Иван Иванов", "/back")
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyAskName), api.last(t).Text)

	b.say("Иван Иванов", "901234567", "Acme", "Бизнес", "/skip")
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyThankYou), api.last(t).Text)

	b.say("/start", "/cancel")
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyCancelled), api.last(t).Text)

	b.say("/unknown")
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyHelp), api.last(t).Text)
}

func TestBot_TextWithoutSession(t *testing.T) {
	b, api, _ := newTestBot(form.Options{})

	b.say("hello")

	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyFallback), api.last(t).Text)
}

func TestBot_IgnoresGroupAndMalformedMessages(t *testing.T) {
	b, api, _ := newTestBot(form.Options{})

	group := textMessage("/start")
	group.Chat = &tgbotapi.Chat{ID: -100, Type: "supergroup"}
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: group})

	noChat := textMessage("/start")
	noChat.Chat = nil
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: noChat})

	orphan := callback(form.DataConfirmYes)
	orphan.Message = nil
	b.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: orphan})

	b.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 5})

	assert.Empty(t, api.messages())
}

type panickyConversation struct {
	conversation
}

func (panickyConversation) HandleText(ctx context.Context, id int64, text string) (form.Reply, error) {
	panic("boom")
}

type failingConversation struct {
	conversation
}

func (failingConversation) HandleText(ctx context.Context, id int64, text string) (form.Reply, error) {
	return form.Reply{}, errors.New("redis: connection refused")
}

func TestBot_RecoversFromPanic(t *testing.T) {
	api := &fakeAPI{}
	table := i18n.New()
	b := NewBot(api, panickyConversation{}, table, nil, zap.NewNop())

	assert.NotPanics(t, func() { b.say("hello") })
	assert.Equal(t, table.Text(models.LanguageRU, i18n.KeyInternalError), api.last(t).Text)
}

func TestBot_EngineErrorSendsGenericText(t *testing.T) {
	api := &fakeAPI{}
	table := i18n.New()
	b := NewBot(api, failingConversation{}, table, nil, zap.NewNop())

	b.say("hello")

	assert.Equal(t, table.Text(models.LanguageRU, i18n.KeyInternalError), api.last(t).Text)
}

func TestBot_PollRetriesConflict(t *testing.T) {
	b, api, _ := newTestBot(form.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var offsets []int
	api.getUpdates = func(call int, config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
		offsets = append(offsets, config.Offset)
		switch call {
		case 1:
			return nil, &tgbotapi.Error{Code: 409, Message: "Conflict: terminated by other getUpdates request"}
		case 2:
			return []tgbotapi.Update{{UpdateID: 10, Message: textMessage("/start")}}, nil
		default:
			cancel()
			return nil, nil
		}
	}

	require.NoError(t, b.poll(ctx, &backoff.ZeroBackOff{}))

	assert.Equal(t, []int{0, 0, 11}, offsets)
	assert.Equal(t, b.table.Text(models.LanguageRU, i18n.KeyChooseLanguage), api.last(t).Text)

	require.NotEmpty(t, api.requests)
	deleteWebhook, ok := api.requests[0].(tgbotapi.DeleteWebhookConfig)
	require.True(t, ok)
	assert.True(t, deleteWebhook.DropPendingUpdates)
}

func TestIsConflict(t *testing.T) {
	assert.True(t, isConflict(&tgbotapi.Error{Code: 409}))
	assert.False(t, isConflict(&tgbotapi.Error{Code: 502}))
	assert.False(t, isConflict(errors.New("timeout")))
}

func TestBot_StartWebhook(t *testing.T) {
	b, api, _ := newTestBot(form.Options{})

	require.NoError(t, b.StartWebhook("https://bot.example.com/telegram-webhook"))

	require.Len(t, api.requests, 1)
	webhook, ok := api.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, "bot.example.com", webhook.URL.Host)
	assert.True(t, webhook.DropPendingUpdates)
}

func TestGateway_SendToGroup(t *testing.T) {
	api := &fakeAPI{}
	g := NewGateway(api)

	require.NoError(t, g.SendToGroup(context.Background(), -100500, "📥 Новая заявка!"))
	msg := api.last(t)
	assert.Equal(t, int64(-100500), msg.ChatID)
	assert.Equal(t, "📥 Новая заявка!", msg.Text)

	api.sendErr = errors.New("Forbidden: bot was kicked from the group chat")
	assert.ErrorContains(t, g.SendToGroup(context.Background(), -100500, "x"), "kicked")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.SendToGroup(ctx, -100500, "x"), context.Canceled)
}

func TestReplyMarkup(t *testing.T) {
	assert.Nil(t, replyMarkup(form.Reply{Text: "plain"}))
	assert.IsType(t, tgbotapi.ReplyKeyboardRemove{}, replyMarkup(form.Reply{RemoveKeyboard: true}))

	choices := make([]form.Button, 4)
	for i := range choices {
		choices[i] = form.Button{Label: string(rune('A' + i))}
	}
	markup := replyMarkup(form.Reply{
		Choices:    choices,
		Navigation: []form.Button{{Label: "Назад"}, {Label: "Отмена"}},
	})
	keyboard, ok := markup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.Keyboard, 3)
	assert.Len(t, keyboard.Keyboard[0], 3)
	assert.Len(t, keyboard.Keyboard[1], 1)
	assert.Equal(t, "Назад", keyboard.Keyboard[2][0].Text)
}
