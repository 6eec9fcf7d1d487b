package invalidation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_MarkStale(t *testing.T) {
	bus := NewBus()
	var calls []string
	bus.Subscribe(TopicOrders, func(_ context.Context, topic Topic) { calls = append(calls, "a:"+string(topic)) })
	cancel := bus.Subscribe(TopicOrders, func(_ context.Context, topic Topic) { calls = append(calls, "b:"+string(topic)) })
	bus.Subscribe(TopicCapacities, func(_ context.Context, topic Topic) { calls = append(calls, "c:"+string(topic)) })

	bus.MarkStale(context.Background(), TopicOrders)
	assert.Equal(t, []string{"a:orders", "b:orders"}, calls)

	calls = nil
	cancel()
	bus.MarkStale(context.Background(), TopicOrders, TopicCapacities)
	assert.Equal(t, []string{"a:orders", "c:capacities"}, calls)
}

func TestBus_ListenerMaySubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()
	count := 0
	bus.Subscribe(TopicOrders, func(context.Context, Topic) {
		count++
		bus.Subscribe(TopicCapacities, func(context.Context, Topic) {})
	})
	bus.MarkStale(context.Background(), TopicOrders)
	assert.Equal(t, 1, count)
}

func TestBus_SubscribeAllDeliversOncePerSignal(t *testing.T) {
	bus := NewBus()
	var topics []Topic
	cancel := bus.SubscribeAll(func(_ context.Context, topic Topic) { topics = append(topics, topic) }, TopicOrders, TopicCapacities)

	bus.MarkStale(context.Background(), TopicCapacities, TopicOrders)
	bus.MarkStale(context.Background(), TopicOrders)
	assert.Equal(t, []Topic{TopicCapacities, TopicOrders}, topics)

	cancel()
	bus.MarkStale(context.Background(), TopicOrders, TopicCapacities)
	assert.Len(t, topics, 2)
}

func TestBus_CancelReleasesSubscription(t *testing.T) {
	bus := NewBus()
	keep := bus.Subscribe(TopicOrders, func(context.Context, Topic) {})
	for i := 0; i < 50; i++ {
		cancel := bus.SubscribeAll(func(context.Context, Topic) {}, TopicOrders, TopicCapacities)
		cancel()
	}
	assert.Len(t, bus.order[TopicOrders], 1)
	assert.NotContains(t, bus.order, TopicCapacities)
	assert.NotContains(t, bus.listeners, TopicCapacities)

	keep()
	assert.Empty(t, bus.order)
	assert.Empty(t, bus.listeners)
}
