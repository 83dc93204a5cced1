package events

import (
	"context"
	"strings"
	"sync"
)

// Event describes a cart lifecycle notification. Payload carries the item,
// item id or update data relevant to the topic.
type Event struct {
	Topic    string
	Instance string
	Payload  any
}

// Listener reacts to an emitted event. Returning false from a listener on a
// pre-commit topic (adding, updating, removing, clearing) vetoes the
// mutation in progress; the return value is ignored for post-commit topics.
type Listener func(ctx context.Context, ev Event) bool

// Bus fans lifecycle events out to subscribed listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]Listener)}
}

// Subscribe registers a listener for the given topic.
func (b *Bus) Subscribe(topic string, fn Listener) {
	if b == nil || fn == nil {
		return
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[string][]Listener)
	}
	b.listeners[topic] = append(b.listeners[topic], fn)
}

// Emit dispatches the event to every listener subscribed to its topic, in
// subscription order. It reports false as soon as a listener vetoes. A nil
// bus or a topic without listeners always proceeds.
func (b *Bus) Emit(ctx context.Context, ev Event) bool {
	if b == nil {
		return true
	}
	b.mu.RLock()
	subs := b.listeners[ev.Topic]
	b.mu.RUnlock()
	for _, fn := range subs {
		if !fn(ctx, ev) {
			return false
		}
	}
	return true
}
