package oauth

import "sync"

// Notifier broadcasts a completed result to in-process listeners. It is used
// on the no-opener path, where the callback window is the terminal
// destination and other components react to the finished handshake.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan *OAuthResult
}

func NewNotifier() *Notifier {
	return &Notifier{subs: map[int]chan *OAuthResult{}}
}

func (n *Notifier) Subscribe() (<-chan *OAuthResult, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++

	ch := make(chan *OAuthResult, 1)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}

	return ch, cancel
}

func (n *Notifier) Notify(res *OAuthResult) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- res:
		default:
		}
	}
}
