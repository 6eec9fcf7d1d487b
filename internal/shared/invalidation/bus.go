// Package invalidation signals that a cached collection view is stale and must be reloaded.
package invalidation

import (
	"context"
	"slices"
	"sync"
)

// Topic names a family of dependent views.
type Topic string

const (
	TopicOrders     Topic = "orders"
	TopicCapacities Topic = "capacities"
)

// Listener reacts to a stale signal, typically by reloading its view.
type Listener func(ctx context.Context, topic Topic)

// Notifier is the publishing side used by mutating use cases.
type Notifier interface {
	MarkStale(ctx context.Context, topics ...Topic)
}

// Subscriber is the listening side used by views.
type Subscriber interface {
	SubscribeAll(fn Listener, topics ...Topic) func()
}

// Bus fans stale signals out to listeners in subscription order.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[Topic]map[int]Listener
	order     map[Topic][]int
}

func NewBus() *Bus {
	return &Bus{
		listeners: map[Topic]map[int]Listener{},
		order:     map[Topic][]int{},
	}
}

// Subscribe registers fn for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, fn Listener) func() {
	return b.SubscribeAll(fn, topic)
}

// SubscribeAll registers fn for several topics at once. A single MarkStale call reaches
// fn at most once, with the first matching topic.
func (b *Bus) SubscribeAll(fn Listener, topics ...Topic) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	for _, topic := range topics {
		if b.listeners[topic] == nil {
			b.listeners[topic] = map[int]Listener{}
		}
		b.listeners[topic][id] = fn
		b.order[topic] = append(b.order[topic], id)
	}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, topic := range topics {
			delete(b.listeners[topic], id)
			b.order[topic] = slices.DeleteFunc(b.order[topic], func(v int) bool { return v == id })
			if len(b.listeners[topic]) == 0 {
				delete(b.listeners, topic)
				delete(b.order, topic)
			}
		}
	}
}

// MarkStale invokes every listener of the given topics in subscription order.
func (b *Bus) MarkStale(ctx context.Context, topics ...Topic) {
	for _, d := range b.snapshot(topics) {
		d.fn(ctx, d.topic)
	}
}

type delivery struct {
	fn    Listener
	topic Topic
}

func (b *Bus) snapshot(topics []Topic) []delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := map[int]bool{}
	var out []delivery
	for _, topic := range topics {
		for _, id := range b.order[topic] {
			fn, ok := b.listeners[topic][id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, delivery{fn: fn, topic: topic})
		}
	}
	return out
}

// Noop discards every signal.
var Noop Notifier = noopNotifier{}

type noopNotifier struct{}

func (noopNotifier) MarkStale(context.Context, ...Topic) {}

var (
	_ Notifier   = (*Bus)(nil)
	_ Subscriber = (*Bus)(nil)
)
