package oauth

import "sync"

const subscriberBuffer = 8

// Bus is an explicit cross-context message channel standing in for ambient
// window messaging. Subscribers register under their own origin; Post
// delivers only to subscribers whose origin matches the target exactly.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]busSubscriber
}

type busSubscriber struct {
	origin string
	ch     chan Message
}

func NewBus() *Bus {
	return &Bus{subs: map[int]busSubscriber{}}
}

// Subscribe registers a receiver for messages targeted at origin. The
// returned cancel func deregisters it; cancelling twice is a no-op.
func (b *Bus) Subscribe(origin string) (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan Message, subscriberBuffer)
	b.subs[id] = busSubscriber{origin: origin, ch: ch}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}

	return ch, cancel
}

// Post delivers m to every subscriber registered under target. Delivery is
// non-blocking: a subscriber that has fallen behind drops the message rather
// than stalling the sender.
func (b *Bus) Post(target string, m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.origin != target {
			continue
		}

		select {
		case sub.ch <- m:
		default:
		}
	}
}

// Subscribers reports the number of registered receivers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
