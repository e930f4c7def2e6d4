package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBus_DeliversInOrder(t *testing.T) {
	b := NewBus(zap.NewNop())
	var got []string

	b.Subscribe(SaleCompleted, func(e Event) { got = append(got, "first:"+e.CashierID) })
	b.Subscribe(SaleCompleted, func(e Event) { got = append(got, "second:"+e.CashierID) })
	b.Subscribe(AuthChanged, func(Event) { got = append(got, "auth") })

	b.Publish(Event{Topic: SaleCompleted, CashierID: "7"})

	assert.Equal(t, []string{"first:7", "second:7"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus(nil)
	calls := 0

	unsubscribe := b.Subscribe(AuthChanged, func(Event) { calls++ })
	b.Publish(Event{Topic: AuthChanged})
	unsubscribe()
	unsubscribe()
	b.Publish(Event{Topic: AuthChanged})

	assert.Equal(t, 1, calls)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := NewBus(zap.NewNop())
	delivered := false

	b.Subscribe(CreditSettled, func(Event) { panic("boom") })
	b.Subscribe(CreditSettled, func(Event) { delivered = true })

	assert.NotPanics(t, func() { b.Publish(Event{Topic: CreditSettled}) })
	assert.True(t, delivered)
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	b := NewBus(zap.NewNop())
	calls := 0

	var unsubscribe func()
	unsubscribe = b.Subscribe(SaleCompleted, func(Event) {
		calls++
		unsubscribe()
	})

	b.Publish(Event{Topic: SaleCompleted})
	b.Publish(Event{Topic: SaleCompleted})

	assert.Equal(t, 1, calls)
}
