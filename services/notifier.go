package services

import (
	"sync"

	"dailyledger/model"
)

// Notifier receives engine notifications. Delivery must not block.
type Notifier interface {
	Notify(n model.Notification)
}

// Broadcaster fans notifications out to subscribers. Slow subscribers miss
// notifications rather than stall the engine.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan model.Notification
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan model.Notification)}
}

// Subscribe returns a channel of notifications and a cancel func that closes it.
func (b *Broadcaster) Subscribe(buffer int) (<-chan model.Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan model.Notification, buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broadcaster) Notify(n model.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
