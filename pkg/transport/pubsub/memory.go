package pubsub

import (
	"context"
	"errors"
	"sync"
)

const subscriberBufferSize = 256

// Hub is an in-process Bus. Publish blocks while a subscriber's buffer is
// full, so slow subscribers apply backpressure instead of losing frames.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*memSub]struct{}
	closed bool
	quit   chan struct{}
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[*memSub]struct{}{}, quit: make(chan struct{})}
}

func (h *Hub) Publish(ctx context.Context, channel, payload string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	msg := Message{Channel: channel, Payload: payload}
	for s := range h.subs[channel] {
		select {
		case s.ch <- msg:
		case <-s.done:
		case <-h.quit:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, channels ...string) (Subscription, error) {
	if len(channels) == 0 {
		return nil, errors.New("pubsub: no channels")
	}
	s := &memSub{
		hub:      h,
		channels: append([]string(nil), channels...),
		ch:       make(chan Message, subscriberBufferSize),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	for _, c := range channels {
		set, ok := h.subs[c]
		if !ok {
			set = map[*memSub]struct{}{}
			h.subs[c] = set
		}
		set[s] = struct{}{}
	}
	return s, nil
}

// Close ends every subscription.
func (h *Hub) Close() error {
	h.once.Do(func() { close(h.quit) })
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	var all []*memSub
	seen := map[*memSub]bool{}
	for _, set := range h.subs {
		for s := range set {
			if !seen[s] {
				seen[s] = true
				all = append(all, s)
			}
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		_ = s.Close()
	}
	return nil
}

type memSub struct {
	hub      *Hub
	channels []string
	ch       chan Message
	done     chan struct{}
	once     sync.Once
}

func (s *memSub) Messages() <-chan Message { return s.ch }

func (s *memSub) Close() error {
	s.once.Do(func() {
		// Unblock publishers first; they hold the read lock while sending.
		close(s.done)
		s.hub.mu.Lock()
		for _, c := range s.channels {
			if set, ok := s.hub.subs[c]; ok {
				delete(set, s)
				if len(set) == 0 {
					delete(s.hub.subs, c)
				}
			}
		}
		s.hub.mu.Unlock()
		close(s.ch)
	})
	return nil
}
