package telegram

import (
	"context"
	"sync"

	"github.com/go-telegram/bot/models"
)

type ctxUpdate struct {
	ctx context.Context
	upd *models.Update
}

// Dispatcher routes updates to worker goroutines keeping chat order.
type Dispatcher struct {
	sender  Sender
	handler HandlerFunc
	chans   []chan ctxUpdate
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines. Updates of one chat always go to
// the same worker.
func NewDispatcher(s Sender, workers int, h HandlerFunc) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{sender: s, handler: h, chans: make([]chan ctxUpdate, workers)}
	for i := range d.chans {
		d.chans[i] = make(chan ctxUpdate, 100)
		d.wg.Add(1)
		go d.worker(d.chans[i])
	}
	return d
}

// Dispatch queues upd. It blocks while the chat's worker queue is full and
// returns false if ctx ends first or the dispatcher is closed.
func (d *Dispatcher) Dispatch(ctx context.Context, upd *models.Update) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	idx := 0
	if chatID := ChatID(upd); chatID != 0 {
		idx = int(abs(chatID) % int64(len(d.chans)))
	}
	select {
	case d.chans[idx] <- ctxUpdate{ctx: ctx, upd: upd}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops accepting updates and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.chans {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(in <-chan ctxUpdate) {
	defer d.wg.Done()
	for item := range in {
		d.handler(item.ctx, d.sender, item.upd)
	}
}

// ChatID returns the chat an update belongs to, or 0.
func ChatID(u *models.Update) int64 {
	if u.Message != nil {
		return u.Message.Chat.ID
	}
	if u.CallbackQuery != nil && u.CallbackQuery.Message.Message != nil {
		return u.CallbackQuery.Message.Message.Chat.ID
	}
	return 0
}

// UserID returns the sender of an update, or 0.
func UserID(u *models.Update) int64 {
	if u.Message != nil && u.Message.From != nil {
		return u.Message.From.ID
	}
	if u.CallbackQuery != nil {
		return u.CallbackQuery.From.ID
	}
	return 0
}

func abs(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}
