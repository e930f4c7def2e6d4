package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storepos/api"
	"storepos/checkout"
	"storepos/events"
	"storepos/models"
	"storepos/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Storefront is the part of the storefront REST API the POS uses.
type Storefront interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CustomerInfo(ctx context.Context, phone string) (models.CustomerRecord, error)
	VerifyReservation(ctx context.Context, reservationID int64, code string) (decimal.Decimal, error)
	CreateSale(ctx context.Context, p models.SalePayload) (string, error)
	CreateReservationSale(ctx context.Context, p models.SalePayload) (string, error)
	SettleCredit(ctx context.Context, req models.SettleCreditRequest) (models.SettleCreditResponse, error)
	ProcessReturn(ctx context.Context, req models.ReturnRequest) (string, error)
}

// Recorder counts business outcomes.
type Recorder interface {
	Checkout(channel, mode, result string)
	Verification(result string)
	Settlement(result string)
}

type nopRecorder struct{}

func (nopRecorder) Checkout(string, string, string) {}
func (nopRecorder) Verification(string)             {}
func (nopRecorder) Settlement(string)               {}

type Deps struct {
	Sessions   store.SessionStore
	Sales      store.SalesJournal
	Customers  store.CustomerCache
	Storefront Storefront
	Bus        *events.Bus
	Metrics    Recorder
	Logger     *zap.Logger

	AdvancePerUnit decimal.Decimal
	Now            func() time.Time
}

// POSService runs checkout sessions against the storefront.
type POSService struct {
	sessions  store.SessionStore
	sales     store.SalesJournal
	customers store.CustomerCache
	front     Storefront
	bus       *events.Bus
	metrics   Recorder
	logger    *zap.Logger

	advancePerUnit decimal.Decimal
	now            func() time.Time

	sfg         singleflight.Group // one storefront lookup per customer at a time
	unsubscribe []func()
}

func New(d Deps) *POSService {
	s := &POSService{
		sessions:       d.Sessions,
		sales:          d.Sales,
		customers:      d.Customers,
		front:          d.Storefront,
		bus:            d.Bus,
		metrics:        d.Metrics,
		logger:         d.Logger,
		advancePerUnit: d.AdvancePerUnit,
		now:            d.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.bus == nil {
		s.bus = events.NewBus(s.logger)
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.customers == nil {
		s.customers = store.NoopCache{}
	}
	if s.sales == nil {
		s.sales = store.NewMemorySales()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if !s.advancePerUnit.IsPositive() {
		s.advancePerUnit = checkout.DefaultAdvancePerUnit
	}

	s.unsubscribe = append(s.unsubscribe,
		s.bus.Subscribe(events.SaleCompleted, s.onSaleCompleted),
		s.bus.Subscribe(events.CreditSettled, s.onCreditSettled),
	)
	return s
}

// Close detaches the service from the event bus.
func (s *POSService) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
}

// Open starts a checkout for the cashier. A reservation seed prefills it.
func (s *POSService) Open(ctx context.Context, cashierID string, channel checkout.Channel, seed *checkout.ReservationSeed) (*checkout.Session, error) {
	sess, err := checkout.NewSession(uuid.NewString(), cashierID, channel, seed, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("checkout opened",
		zap.String("session_id", sess.ID),
		zap.String("cashier_id", cashierID),
		zap.String("channel", string(channel)))
	return sess, nil
}

// Get returns the cashier's session. Sessions of other cashiers are reported
// as not found.
func (s *POSService) Get(ctx context.Context, cashierID, id string) (*checkout.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.CashierID != cashierID {
		return nil, store.ErrSessionNotFound
	}
	return sess, nil
}

// Discard drops the session, as when the operator leaves the page.
func (s *POSService) Discard(ctx context.Context, cashierID, id string) error {
	if _, err := s.Get(ctx, cashierID, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// mutate loads the session, applies fn and stores the result. Nothing is
// stored when fn fails.
func (s *POSService) mutate(ctx context.Context, cashierID, id string, fn func(*checkout.Session) error) (*checkout.Session, error) {
	sess, err := s.Get(ctx, cashierID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// settle applies the outcome of a storefront call to a fresh copy of the
// session. A session discarded in the meantime is not recreated.
func (s *POSService) settle(ctx context.Context, cashierID, id string, fn func(*checkout.Session) error) (*checkout.Session, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		sess, err := s.mutate(ctx, cashierID, id, fn)
		if err == nil {
			return sess, nil
		}
		if errors.Is(err, store.ErrSessionNotFound) {
			s.logger.Warn("dropping result for discarded session", zap.String("session_id", id))
			return nil, err
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ProductInput is the catalog entry the till picked.
type ProductInput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SizeLabel string          `json:"size_label"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"quantity"`
}

func (s *POSService) AddLine(ctx context.Context, cashierID, id string, in ProductInput) (*checkout.Session, error) {
	if in.ProductID <= 0 || in.Price.IsNegative() {
		return nil, ErrInvalidLine
	}
	product := models.Product{ID: in.ProductID, Name: strings.TrimSpace(in.Name)}
	size := models.ProductSize{SizeLabel: strings.TrimSpace(in.SizeLabel), Price: in.Price, Quantity: in.Available}
	return s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		return sess.AddLine(product, size)
	})
}

func (s *POSService) UpdateQuantity(ctx context.Context, cashierID, id string, productID int64, sizeLabel string, qty int) (*checkout.Session, error) {
	return s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		return sess.UpdateQuantity(productID, sizeLabelOrDefault(sizeLabel), qty)
	})
}

func (s *POSService) RemoveLine(ctx context.Context, cashierID, id string, productID int64, sizeLabel string) (*checkout.Session, error) {
	return s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		return sess.RemoveLine(productID, sizeLabelOrDefault(sizeLabel))
	})
}

// ProcessReturn takes qty units of a line back out of the cart.
func (s *POSService) ProcessReturn(ctx context.Context, cashierID, id string, productID int64, sizeLabel string, qty int) (*checkout.Session, int, error) {
	var left int
	sess, err := s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		var err error
		left, err = sess.ProcessReturn(productID, sizeLabelOrDefault(sizeLabel), qty)
		return err
	})
	return sess, left, err
}

// PreviewPayment validates and stores the payment form, returning the split.
func (s *POSService) PreviewPayment(ctx context.Context, cashierID, id string, in checkout.PaymentInput) (*checkout.Session, checkout.PaymentSplit, error) {
	var split checkout.PaymentSplit
	sess, err := s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		var err error
		split, err = sess.SetPayment(in)
		return err
	})
	return sess, split, err
}

// PurgeIdle discards sessions idle for longer than ttl.
func (s *POSService) PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.sessions.DeleteIdle(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged idle checkout sessions", zap.Int64("count", n))
	}
	return n, nil
}

func sizeLabelOrDefault(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return checkout.DefaultSizeLabel
	}
	return label
}

// storeTimeout bounds writes that must outlive the caller's request.
const storeTimeout = 5 * time.Second

// detached keeps ctx's values but not its cancellation. The outcome of a
// storefront call is stored even when the till went away meanwhile.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

// upstream publishes auth.changed when the storefront rejected the token.
func (s *POSService) upstream(cashierID string, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		s.bus.Publish(events.Event{Topic: events.AuthChanged, CashierID: cashierID})
	}
	return err
}
