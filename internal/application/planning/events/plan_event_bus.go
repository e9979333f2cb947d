package events

import (
	"context"
	"sync"

	"github.com/riceops/production-planning/internal/domain/activation"
)

// PlanEventBus provides pub/sub for plan approval events.
// Thread-safe, supports multiple subscribers.
type PlanEventBus struct {
	mu          sync.RWMutex
	subscribers []chan activation.PlanApprovedEvent
	buffer      int
}

// NewPlanEventBus creates a bus whose subscriber channels hold buffer events
func NewPlanEventBus(buffer int) *PlanEventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &PlanEventBus{buffer: buffer}
}

// Subscribe returns a channel that receives every published event.
// Caller must Unsubscribe when done.
func (b *PlanEventBus) Subscribe() <-chan activation.PlanApprovedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan activation.PlanApprovedEvent, b.buffer)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *PlanEventBus) Unsubscribe(ch <-chan activation.PlanApprovedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, c := range b.subscribers {
		if c == ch {
			close(c)
			b.subscribers[i] = b.subscribers[len(b.subscribers)-1]
			b.subscribers = b.subscribers[:len(b.subscribers)-1]
			return
		}
	}
}

// Publish delivers the event to every subscriber. Approvals are never
// dropped: a full subscriber blocks the publisher until it drains or ctx is done.
func (b *PlanEventBus) Publish(ctx context.Context, event activation.PlanApprovedEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// SubscriberCount returns the number of active subscriptions
func (b *PlanEventBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
