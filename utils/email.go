package utils

import (
	"fmt"
	"strings"
	"time"

	"storepos/events"
	"storepos/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers a prepared message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends plain-text receipts for completed sales.
type Mailer struct {
	sender   Sender
	from, to string
	location *time.Location
	logger   *zap.Logger
}

func NewMailer(host string, port int, user, password, from, to string, loc *time.Location, logger *zap.Logger) *Mailer {
	if from == "" {
		from = user
	}
	return &Mailer{
		sender:   gomail.NewDialer(host, port, user, password),
		from:     from,
		to:       to,
		location: loc,
		logger:   logger,
	}
}

func (m *Mailer) SendReceipt(sale models.SaleRecord) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", "Receipt "+sale.InvoiceNo)
	msg.SetBody("text/plain", FormatReceipt(sale, m.location))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending receipt %s: %w", sale.InvoiceNo, err)
	}
	return nil
}

// Subscribe mails a receipt for every completed sale. Sending happens off the
// publisher's goroutine.
func (m *Mailer) Subscribe(bus *events.Bus) func() {
	return bus.Subscribe(events.SaleCompleted, func(e events.Event) {
		ev, ok := e.Payload.(events.SaleCompletedEvent)
		if !ok {
			return
		}
		go func() {
			if err := m.SendReceipt(ev.Sale); err != nil {
				m.logger.Warn("receipt not sent", zap.String("invoice_no", ev.Sale.InvoiceNo), zap.Error(err))
			}
		}()
	})
}

// FormatReceipt renders the sale as plain text.
func FormatReceipt(sale models.SaleRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice: %s\n", sale.InvoiceNo)
	fmt.Fprintf(&b, "Date: %s\n", sale.CreatedAt.In(loc).Format("02.01.2006 15:04"))
	if sale.CustomerName != "" || sale.CustomerPhone != "" {
		fmt.Fprintf(&b, "Customer: %s %s\n", sale.CustomerName, sale.CustomerPhone)
	}
	b.WriteString("\n")

	for _, l := range sale.Lines {
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(&b, "#%d (%s) %d x %s = %s\n", l.ProductID, l.SizeLabel, l.Quantity, l.UnitPrice.StringFixed(2), lineTotal.StringFixed(2))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", sale.Subtotal.StringFixed(2))
	if sale.Discount.IsPositive() {
		fmt.Fprintf(&b, "Advance: -%s\n", sale.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\n", sale.Total.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s, paid %s", sale.PaymentMode, sale.PaidAmount.StringFixed(2))
	if sale.CreditAmount.IsPositive() {
		fmt.Fprintf(&b, ", on credit %s", sale.CreditAmount.StringFixed(2))
	}
	b.WriteString("\n")
	if sale.SettledAmount.IsPositive() {
		fmt.Fprintf(&b, "Old credit settled: %s\n", sale.SettledAmount.StringFixed(2))
	}
	return b.String()
}
