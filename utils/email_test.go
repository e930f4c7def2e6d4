package utils

import (
	"errors"
	"sync"
	"testing"
	"time"

	"storepos/events"
	"storepos/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*gomail.Message
	err  error
	done chan struct{}
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, m...)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func sale() models.SaleRecord {
	d := decimal.RequireFromString
	return models.SaleRecord{
		InvoiceNo:     "INV-7",
		CustomerName:  "Ravi",
		CustomerPhone: "9876543210",
		Lines: []models.SaleLine{
			{ProductID: 1, SizeLabel: "M", Quantity: 2, UnitPrice: d("500")},
			{ProductID: 2, SizeLabel: "Default", Quantity: 1, UnitPrice: d("300")},
		},
		Subtotal:      d("1300"),
		Discount:      d("150"),
		Total:         d("1150"),
		PaymentMode:   "mixed",
		PaidAmount:    d("150"),
		CreditAmount:  d("1000"),
		SettledAmount: decimal.Zero,
		CreatedAt:     time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestFormatReceipt(t *testing.T) {
	out := FormatReceipt(sale(), time.UTC)

	assert.Contains(t, out, "Invoice: INV-7")
	assert.Contains(t, out, "Date: 01.01.2026 10:00")
	assert.Contains(t, out, "Customer: Ravi 9876543210")
	assert.Contains(t, out, "#1 (M) 2 x 500.00 = 1000.00")
	assert.Contains(t, out, "Advance: -150.00")
	assert.Contains(t, out, "Total: 1150.00")
	assert.Contains(t, out, "Payment: mixed, paid 150.00, on credit 1000.00")
	assert.NotContains(t, out, "Old credit settled")
}

func TestMailer_SendsOnSaleCompleted(t *testing.T) {
	sender := &fakeSender{done: make(chan struct{}, 1)}
	m := &Mailer{sender: sender, from: "till@shop", to: "owner@shop", location: time.UTC, logger: zap.NewNop()}
	bus := events.NewBus(zap.NewNop())
	unsubscribe := m.Subscribe(bus)
	defer unsubscribe()

	bus.Publish(events.Event{Topic: events.SaleCompleted, Payload: events.SaleCompletedEvent{Sale: sale()}})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("receipt was not sent")
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"Receipt INV-7"}, sender.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"owner@shop"}, sender.sent[0].GetHeader("To"))
}

func TestMailer_SendReceiptWrapsError(t *testing.T) {
	boom := errors.New("smtp down")
	m := &Mailer{sender: &fakeSender{err: boom}, logger: zap.NewNop()}

	err := m.SendReceipt(sale())

	assert.ErrorIs(t, err, boom)
}
