package service

import (
	"context"
	"sync"
	"time"

	"storepos/checkout"
	"storepos/models"
	"storepos/store"

	"github.com/shopspring/decimal"
)

// MockStorefront implements Storefront for testing
type MockStorefront struct {
	mu sync.Mutex

	Products    []models.Product
	ProductsErr error

	Customers   map[string]models.CustomerRecord
	CustomerErr error
	LookupCalls int
	// BeforeLookupReturns runs inside the customer call with its context.
	BeforeLookupReturns func(ctx context.Context)

	Advance   decimal.Decimal
	VerifyErr error
	// BeforeVerifyReturns runs while the verification call is in flight.
	BeforeVerifyReturns func()

	Invoice   string
	SaleErr   error
	// BeforeSaleReturns runs while the sale submission is in flight.
	BeforeSaleReturns func()
	Sales     []models.SalePayload
	ResSales  []models.SalePayload
	SettleErr error
	Settles   []models.SettleCreditRequest
	Remaining decimal.Decimal
	Returns   []models.ReturnRequest
	ReturnErr error
}

func (m *MockStorefront) ListProducts(context.Context) ([]models.Product, error) {
	return m.Products, m.ProductsErr
}

func (m *MockStorefront) CustomerInfo(ctx context.Context, phone string) (models.CustomerRecord, error) {
	if m.BeforeLookupReturns != nil {
		m.BeforeLookupReturns(ctx)
	}
	if err := ctx.Err(); err != nil {
		return models.CustomerRecord{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupCalls++
	if m.CustomerErr != nil {
		return models.CustomerRecord{}, m.CustomerErr
	}
	if rec, ok := m.Customers[phone]; ok {
		return rec, nil
	}
	return models.CustomerRecord{Phone: phone, OutstandingCredit: decimal.Zero}, nil
}

func (m *MockStorefront) VerifyReservation(context.Context, int64, string) (decimal.Decimal, error) {
	if m.BeforeVerifyReturns != nil {
		m.BeforeVerifyReturns()
	}
	return m.Advance, m.VerifyErr
}

func (m *MockStorefront) CreateSale(_ context.Context, p models.SalePayload) (string, error) {
	if m.BeforeSaleReturns != nil {
		m.BeforeSaleReturns()
	}
	m.Sales = append(m.Sales, p)
	return m.Invoice, m.SaleErr
}

func (m *MockStorefront) CreateReservationSale(_ context.Context, p models.SalePayload) (string, error) {
	m.ResSales = append(m.ResSales, p)
	return m.Invoice, m.SaleErr
}

func (m *MockStorefront) SettleCredit(_ context.Context, req models.SettleCreditRequest) (models.SettleCreditResponse, error) {
	m.Settles = append(m.Settles, req)
	if m.SettleErr != nil {
		return models.SettleCreditResponse{}, m.SettleErr
	}
	resp := models.SettleCreditResponse{SettledAmount: req.Amount, RemainingCredit: m.Remaining}
	resp.Success = true
	return resp, nil
}

func (m *MockStorefront) ProcessReturn(_ context.Context, req models.ReturnRequest) (string, error) {
	m.Returns = append(m.Returns, req)
	return "Return processed.", m.ReturnErr
}

// recorder counts outcomes by label.
type recorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecorder() *recorder { return &recorder{counts: map[string]int{}} }

func (r *recorder) inc(k string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[k]++
}

func (r *recorder) Checkout(channel, mode, result string) { r.inc("checkout:" + channel + ":" + mode + ":" + result) }
func (r *recorder) Verification(result string)            { r.inc("verify:" + result) }
func (r *recorder) Settlement(result string)              { r.inc("settle:" + result) }

func (r *recorder) get(k string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[k]
}

// ctxSessions fails on a finished context the way the Mongo store does.
type ctxSessions struct{ *store.MemorySessions }

func (c ctxSessions) Create(ctx context.Context, s *checkout.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.MemorySessions.Create(ctx, s)
}

func (c ctxSessions) Get(ctx context.Context, id string) (*checkout.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.MemorySessions.Get(ctx, id)
}

func (c ctxSessions) Update(ctx context.Context, s *checkout.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.MemorySessions.Update(ctx, s)
}

func (c ctxSessions) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.MemorySessions.Delete(ctx, id)
}

func (c ctxSessions) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.MemorySessions.DeleteIdle(ctx, before)
}

type ctxSales struct{ *store.MemorySales }

func (c ctxSales) Record(ctx context.Context, r models.SaleRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.MemorySales.Record(ctx, r)
}
