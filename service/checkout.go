package service

import (
	"context"
	"errors"
	"time"

	"storepos/api"
	"storepos/checkout"
	"storepos/events"
	"storepos/models"
	"storepos/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutResult is what the till shows after a successful sale.
type CheckoutResult struct {
	InvoiceNo string                    `json:"invoice_no"`
	Totals    checkout.Totals           `json:"totals"`
	Payment   checkout.PaymentSplit     `json:"payment"`
	Ledger    checkout.LedgerAdjustment `json:"ledger"`
	Sale      models.SaleRecord         `json:"sale"`
}

// Checkout validates the session, re-checks live stock, submits the sale and
// discards the session. On any failure the session is left as it was.
func (s *POSService) Checkout(ctx context.Context, cashierID, id string) (*CheckoutResult, error) {
	sess, err := s.Get(ctx, cashierID, id)
	if err != nil {
		return nil, err
	}
	mode := string(sess.Payment.Mode)

	if _, err := sess.Prepare(nil); err != nil {
		s.metrics.Checkout(string(sess.Channel), mode, "invalid")
		return nil, err
	}

	products, err := s.front.ListProducts(ctx)
	if err != nil {
		s.metrics.Checkout(string(sess.Channel), mode, "error")
		return nil, s.upstream(cashierID, err)
	}
	receipt, err := sess.Prepare(checkout.IndexStock(products))
	if err != nil {
		s.metrics.Checkout(string(sess.Channel), mode, "invalid")
		return nil, err
	}
	mode = receipt.Payload.Payment.Mode

	// the in-flight guard is the stored status; a concurrent edit loses here
	if err := sess.BeginProcessing(); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}

	invoice, submitErr := s.submit(ctx, sess.Channel, receipt.Payload)

	// из этой точки сессия не должна застрять в processing
	wctx, cancel := detached(ctx)
	defer cancel()

	if submitErr != nil {
		submitErr = s.upstream(cashierID, submitErr)
		if _, err := s.settle(wctx, cashierID, id, func(cur *checkout.Session) error {
			cur.AbortProcessing()
			return nil
		}); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			s.logger.Error("failed to reopen session after rejected sale", zap.String("session_id", id), zap.Error(err))
		}

		result := "error"
		if errors.Is(submitErr, api.ErrRejected) {
			result = "rejected"
		}
		s.metrics.Checkout(string(sess.Channel), mode, result)
		s.logger.Warn("sale not accepted",
			zap.String("session_id", id),
			zap.String("channel", string(sess.Channel)),
			zap.Error(submitErr))
		return nil, submitErr
	}

	sess.Close(invoice)
	if err := s.sessions.Delete(wctx, id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		s.logger.Error("failed to discard completed session", zap.String("session_id", id), zap.Error(err))
	}

	sale := saleRecord(sess, receipt, s.now())
	if err := s.sales.Record(wctx, sale); err != nil {
		// продажа уже принята витриной, журнал вторичен
		s.logger.Error("failed to journal sale", zap.String("invoice_no", invoice), zap.Error(err))
	}

	s.metrics.Checkout(string(sess.Channel), mode, "success")
	s.logger.Info("sale completed",
		zap.String("invoice_no", invoice),
		zap.String("session_id", id),
		zap.String("cashier_id", cashierID),
		zap.String("total", receipt.Totals.Total.String()),
		zap.String("mode", mode))
	s.bus.Publish(events.Event{
		Topic:     events.SaleCompleted,
		CashierID: cashierID,
		Payload:   events.SaleCompletedEvent{Sale: sale},
	})

	return &CheckoutResult{
		InvoiceNo: invoice,
		Totals:    receipt.Totals,
		Payment:   receipt.Split,
		Ledger:    receipt.Ledger,
		Sale:      sale,
	}, nil
}

func (s *POSService) submit(ctx context.Context, channel checkout.Channel, p models.SalePayload) (string, error) {
	if channel == checkout.ChannelReservation {
		return s.front.CreateReservationSale(ctx, p)
	}
	return s.front.CreateSale(ctx, p)
}

func saleRecord(sess *checkout.Session, r checkout.Receipt, now time.Time) models.SaleRecord {
	return models.SaleRecord{
		ID:               uuid.NewString(),
		SessionID:        sess.ID,
		CashierID:        sess.CashierID,
		Channel:          string(sess.Channel),
		InvoiceNo:        sess.InvoiceNo,
		ReservationID:    r.Payload.ReservationID,
		CustomerName:     r.Payload.Customer.Name,
		CustomerPhone:    r.Payload.Customer.Phone,
		Lines:            r.Payload.Cart,
		Subtotal:         r.Totals.Subtotal,
		Discount:         r.Totals.Discount,
		Total:            r.Totals.Total,
		PaymentMode:      r.Payload.Payment.Mode,
		PaidAmount:       r.Split.PaidAmount,
		CreditAmount:     r.Split.CreditAmount,
		SettledAmount:    r.Split.SettleCreditAmount,
		LedgerAdjustment: r.Ledger.Net,
		Collected:        r.Ledger.Collected,
		CreatedAt:        now,
	}
}
