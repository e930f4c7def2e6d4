package events

import (
	"sync"

	"go.uber.org/zap"
)

type Topic string

const (
	// AuthChanged is published when the storefront stops accepting a cashier's token.
	AuthChanged Topic = "auth.changed"
	// SaleCompleted carries a SaleCompletedEvent.
	SaleCompleted Topic = "sale.completed"
	// CreditSettled carries a CreditSettledEvent.
	CreditSettled Topic = "credit.settled"
)

type Event struct {
	Topic     Topic
	CashierID string
	Payload   any
}

type Handler func(Event)

// Bus delivers events synchronously to every subscriber of a topic, in
// subscription order. A panicking handler is logged and skipped.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscription
	nextID int
	logger *zap.Logger
}

type subscription struct {
	id int
	fn Handler
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[Topic][]subscription), logger: logger}
}

// Subscribe registers fn for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.Topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s.fn, e)
	}
}

func (b *Bus) deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", string(e.Topic)),
				zap.Any("panic", r))
		}
	}()
	fn(e)
}
