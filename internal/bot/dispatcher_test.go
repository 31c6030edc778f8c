package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatUpdate(updateID int, chat int64) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message:  &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chat, Type: "private"}, Text: "x"},
	}
}

func TestDispatcher_KeepsOrderPerChat(t *testing.T) {
	var mu sync.Mutex
	seen := map[int64][]int{}

	d := NewDispatcher(func(ctx context.Context, update tgbotapi.Update) {
		// Earlier updates are slower, a goroutine per update would reorder them
		time.Sleep(time.Duration(10-update.UpdateID%10) * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		chat := update.Message.Chat.ID
		seen[chat] = append(seen[chat], update.UpdateID)
	})

	for i := 0; i < 10; i++ {
		d.Dispatch(chatUpdate(i, 1))
		d.Dispatch(chatUpdate(100+i, 2))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen[1])
	assert.Equal(t, []int{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}, seen[2])
}

func TestDispatcher_ChatsRunInParallel(t *testing.T) {
	release := make(chan struct{})
	handled := make(chan int64, 2)

	d := NewDispatcher(func(ctx context.Context, update tgbotapi.Update) {
		chat := updateChatID(update)
		if chat == 1 {
			<-release
		}
		handled <- chat
	})

	d.Dispatch(chatUpdate(1, 1))
	d.Dispatch(chatUpdate(2, 2))

	select {
	case chat := <-handled:
		assert.Equal(t, int64(2), chat)
	case <-time.After(time.Second):
		t.Fatal("a blocked chat held up another chat")
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
	assert.Equal(t, int64(1), <-handled)
}

func TestDispatcher_WaitTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	d := NewDispatcher(func(ctx context.Context, update tgbotapi.Update) { <-release })
	d.Dispatch(chatUpdate(1, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}

func TestUpdateChatID(t *testing.T) {
	assert.Equal(t, int64(7), updateChatID(chatUpdate(1, 7)))
	assert.Equal(t, int64(9), updateChatID(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9}},
	}}))
	assert.Equal(t, int64(0), updateChatID(tgbotapi.Update{}))
}
