package streaming

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// MemoryHub is an in-memory EventHub. Publishing never blocks: a
// subscriber whose buffer is full misses the event. The hub retains the
// last event per tab and replays it to new subscribers, so a canvas
// opening its SSE feed mid-session learns immediately that a re-render
// is due.
type MemoryHub struct {
	mu       sync.Mutex
	nextID   uint64
	subs     map[uint64]*subscription
	lastSeen map[string]GraphEvent
}

type subscription struct {
	ch     chan GraphEvent
	filter EventFilter
}

// NewMemoryHub creates a new MemoryHub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		subs:     make(map[uint64]*subscription),
		lastSeen: make(map[string]GraphEvent),
	}
}

// Publish fans the event out to every subscriber whose filter matches.
func (h *MemoryHub) Publish(ctx context.Context, event GraphEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastSeen[event.Tab] = event
	for _, sub := range h.subs {
		sub.offer(event)
	}
	return nil
}

// Subscribe registers a filtered subscription and returns its channel
// with a cancel function. The retained event for the filtered tab, if
// any, is delivered first.
func (h *MemoryHub) Subscribe(ctx context.Context, filter EventFilter) (<-chan GraphEvent, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sub := &subscription{
		ch:     make(chan GraphEvent, subscriberBuffer),
		filter: filter,
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	if filter.Tab != "" {
		if retained, ok := h.lastSeen[filter.Tab]; ok {
			sub.offer(retained)
		}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
	return sub.ch, cancel, nil
}

// offer delivers the event if it matches the filter and the buffer has
// room; slow subscribers drop events rather than stall publishers.
func (s *subscription) offer(event GraphEvent) {
	if !s.filter.matches(event) {
		return
	}
	select {
	case s.ch <- event:
	default:
	}
}

// matches reports whether the event passes the filter.
func (f EventFilter) matches(e GraphEvent) bool {
	if f.Tab != "" && f.Tab != e.Tab {
		return false
	}
	if len(f.EventTypes) == 0 {
		return true
	}
	for _, t := range f.EventTypes {
		if t == e.EventType {
			return true
		}
	}
	return false
}

var _ EventHub = (*MemoryHub)(nil)
