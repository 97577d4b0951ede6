// Package notifier broadcasts cart changes to every mounted consumer, inside
// one process through a Bus and across processes through a Relay.
package notifier

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
)

type Handler func(c context.Context, ev Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous publish/subscribe channel. Broadcast delivers to the
// subscribers registered at that moment, in subscription order; nothing is
// queued for subscribers that arrive later.
type Bus struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers []subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler and returns the function that removes it.
// Calling the returned function more than once, or from inside a handler, is
// allowed.
func (b *Bus) Subscribe(handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscriber{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscribers {
		if s.id == id {
			b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
			return
		}
	}
}

func (b *Bus) Broadcast(c context.Context, ev Event) {
	b.mu.RLock()
	subscribers := make([]subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	zerolog.Ctx(c).Trace().
		Str(log.KeyTag, "Bus Broadcast").
		Str(log.KeyOrigin, ev.Origin).
		Int(log.KeyCartItemsCount, ev.Count).
		Int(log.KeySubscribers, len(subscribers)).
		Msg("broadcasting cart event")
	for _, s := range subscribers {
		s.handler(c, ev)
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
