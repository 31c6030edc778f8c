package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Dispatcher applies webhook updates in arrival order per chat. Different
// chats are handled in parallel, one goroutine per chat with queued updates.
type Dispatcher struct {
	handle func(ctx context.Context, update tgbotapi.Update)

	mu     sync.Mutex
	queues map[int64][]tgbotapi.Update
	wg     sync.WaitGroup
}

func NewDispatcher(handle func(ctx context.Context, update tgbotapi.Update)) *Dispatcher {
	return &Dispatcher{
		handle: handle,
		queues: make(map[int64][]tgbotapi.Update),
	}
}

// Dispatch queues the update behind earlier updates of the same chat and returns
func (d *Dispatcher) Dispatch(update tgbotapi.Update) {
	id := updateChatID(update)

	d.mu.Lock()
	defer d.mu.Unlock()

	queue, running := d.queues[id]
	d.queues[id] = append(queue, update)
	if !running {
		d.wg.Add(1)
		go d.drain(id)
	}
}

func (d *Dispatcher) drain(id int64) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.queues[id]
		if len(queue) == 0 {
			delete(d.queues, id)
			d.mu.Unlock()
			return
		}
		update := queue[0]
		d.queues[id] = queue[1:]
		d.mu.Unlock()

		d.handle(context.Background(), update)
	}
}

// Wait blocks until every queued update is handled or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// updateChatID keys updates without a chat together
func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
