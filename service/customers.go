package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storepos/checkout"
	"storepos/events"
	"storepos/models"
	"storepos/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const minLookupDigits = 4

// CustomerLookup is a customer record plus whether the storefront knew it.
type CustomerLookup struct {
	models.CustomerRecord
	Found bool `json:"found"`
}

// LookupCustomer fetches a customer by phone, through the cache. An unknown
// phone is not an error: it comes back with Found=false and zero credit and
// will be created by the storefront with the sale.
func (s *POSService) LookupCustomer(ctx context.Context, cashierID, phone string) (CustomerLookup, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < minLookupDigits {
		return CustomerLookup{}, ErrPhoneTooShort
	}
	key := cacheKey(cashierID, phone)

	// общий запрос не зависит от того, кто его начал
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		ctx, cancel := detached(ctx)
		defer cancel()

		rec, err := s.customers.Get(ctx, key)
		if err == nil {
			return *rec, nil
		}
		if !errors.Is(err, store.ErrCacheMiss) {
			s.logger.Warn("customer cache get failed", zap.Error(err))
		}

		fetched, err := s.front.CustomerInfo(ctx, phone)
		if err != nil {
			return nil, s.upstream(cashierID, err)
		}

		if err := s.customers.Set(ctx, key, &fetched); err != nil {
			s.logger.Warn("customer cache set failed", zap.Error(err))
		}
		return fetched, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return CustomerLookup{}, ctx.Err()
	}
	if res.Err != nil {
		return CustomerLookup{}, res.Err
	}

	rec := res.Val.(models.CustomerRecord)
	if rec.OutstandingCredit.IsNegative() {
		rec.OutstandingCredit = decimal.Zero
	}
	return CustomerLookup{
		CustomerRecord: rec,
		Found:          rec.Name != "" || rec.HasCredit(),
	}, nil
}

// CustomerInput is what the operator typed in the customer fields.
type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SetCustomer attaches a customer to the session. A phone of four or more
// characters is looked up to load the outstanding credit; the typed name wins
// over the stored one.
func (s *POSService) SetCustomer(ctx context.Context, cashierID, id string, in CustomerInput) (*checkout.Session, CustomerLookup, error) {
	rec := CustomerLookup{CustomerRecord: models.CustomerRecord{
		Name:              strings.TrimSpace(in.Name),
		Phone:             strings.TrimSpace(in.Phone),
		OutstandingCredit: decimal.Zero,
	}}

	if len(rec.Phone) >= minLookupDigits {
		found, err := s.LookupCustomer(ctx, cashierID, rec.Phone)
		if err != nil {
			return nil, CustomerLookup{}, err
		}
		if rec.Name == "" {
			rec.Name = found.Name
		}
		rec.OutstandingCredit = found.OutstandingCredit
		rec.Found = found.Found
	}

	sess, err := s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		return sess.SetCustomer(rec.CustomerRecord)
	})
	return sess, rec, err
}

// SettleInput pays down old credit outside of a sale.
type SettleInput struct {
	Phone       string          `json:"phone"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode string          `json:"payment_mode"`
}

type SettleResult struct {
	Phone           string          `json:"phone"`
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	RemainingCredit decimal.Decimal `json:"remaining_credit"`
	Message         string          `json:"message"`
}

// SettleCredit forwards a standalone settlement. The amount is capped at the
// customer's outstanding credit before it is sent.
func (s *POSService) SettleCredit(ctx context.Context, cashierID string, in SettleInput) (*SettleResult, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	mode, err := checkout.ParsePaymentMode(in.PaymentMode)
	if err != nil {
		return nil, err
	}
	if !mode.Immediate() {
		return nil, checkout.ErrSettleNotAllowed
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, checkout.ErrInvalidSettleAmount
	}

	customer, err := s.LookupCustomer(ctx, cashierID, phone)
	if err != nil {
		s.metrics.Settlement("error")
		return nil, err
	}
	if !customer.HasCredit() {
		s.metrics.Settlement("invalid")
		return nil, checkout.ErrNothingToSettle
	}
	amount = decimal.Min(amount, customer.OutstandingCredit.Round(2))

	resp, err := s.front.SettleCredit(ctx, models.SettleCreditRequest{
		Phone:       phone,
		Amount:      amount,
		PaymentMode: string(mode),
	})
	if err != nil {
		s.metrics.Settlement("rejected")
		return nil, s.upstream(cashierID, err)
	}

	settled := resp.SettledAmount
	if settled.IsZero() {
		settled = amount
	}
	s.metrics.Settlement("success")
	s.logger.Info("credit settled",
		zap.String("cashier_id", cashierID),
		zap.String("phone", phone),
		zap.String("amount", settled.String()),
		zap.String("remaining", resp.RemainingCredit.String()))
	s.bus.Publish(events.Event{
		Topic:     events.CreditSettled,
		CashierID: cashierID,
		Payload: events.CreditSettledEvent{
			Phone:     phone,
			Settled:   settled,
			Remaining: resp.RemainingCredit,
			Mode:      string(mode),
		},
	})

	return &SettleResult{
		Phone:           phone,
		SettledAmount:   settled,
		RemainingCredit: resp.RemainingCredit,
		Message:         resp.Message,
	}, nil
}

// A sale with a customer changes that customer's credit, so the cached
// record is dropped.
func (s *POSService) onSaleCompleted(e events.Event) {
	ev, ok := e.Payload.(events.SaleCompletedEvent)
	if !ok || ev.Sale.CustomerPhone == "" {
		return
	}
	s.forget(e.CashierID, ev.Sale.CustomerPhone)
}

func (s *POSService) onCreditSettled(e events.Event) {
	ev, ok := e.Payload.(events.CreditSettledEvent)
	if !ok {
		return
	}
	s.forget(e.CashierID, ev.Phone)
}

func (s *POSService) forget(cashierID, phone string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.customers.Delete(ctx, cacheKey(cashierID, phone)); err != nil {
		s.logger.Warn("customer cache invalidate failed", zap.Error(err))
	}
}

// Customers belong to a store, so the key is scoped to the cashier.
func cacheKey(cashierID, phone string) string {
	return cashierID + ":" + phone
}
