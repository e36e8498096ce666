// Package broadcast fans status snapshots out to real-time subscribers.
package broadcast

import "sync"

// Hub keeps the latest payload and hands it to every subscriber. A slow
// subscriber never blocks Publish: its pending frame is replaced.
type Hub struct {
	mu     sync.Mutex
	last   []byte
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	ch chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe returns a channel of payloads, the last published payload (nil if
// none yet) and a cancel func. The channel is closed on cancel or Close.
func (h *Hub) Subscribe() (<-chan []byte, []byte, func()) {
	s := &subscriber{ch: make(chan []byte, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, nil, func() {}
	}
	h.subs[s] = struct{}{}
	last := h.last
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.ch)
			}
			h.mu.Unlock()
		})
	}
	return s.ch, last, cancel
}

// Publish stores payload as the latest and offers it to all subscribers.
// It returns the number of subscribers reached.
func (h *Hub) Publish(payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	h.last = payload

	for s := range h.subs {
		select {
		case s.ch <- payload:
			continue
		default:
		}
		// drop the stale frame, keep the new one
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- payload:
		default:
		}
	}
	return len(h.subs)
}

// Last returns the most recently published payload.
func (h *Hub) Last() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later Publish calls are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}
