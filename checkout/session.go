package checkout

import (
	"fmt"
	"strings"
	"time"

	"storepos/models"

	"github.com/shopspring/decimal"
)

type Channel string

const (
	// ChannelPOS checks out through the regular POS sale endpoint.
	ChannelPOS Channel = "pos"
	// ChannelReservation checks out a reservation through the reservation sale endpoint.
	ChannelReservation Channel = "reservation"
)

func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelPOS, ChannelReservation:
		return c, nil
	case "":
		return ChannelPOS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusProcessing Status = "processing"
	StatusClosed     Status = "closed"
)

// Session is one till's checkout: the cart, an optional reservation, the
// customer and the payment form. It is discarded after a successful sale.
type Session struct {
	ID          string                `bson:"_id" json:"id"`
	CashierID   string                `bson:"cashier_id" json:"cashier_id"`
	Channel     Channel               `bson:"channel" json:"channel"`
	Status      Status                `bson:"status" json:"status"`
	Cart        Cart                  `bson:"cart" json:"cart"`
	Reservation *ReservationContext   `bson:"reservation,omitempty" json:"reservation,omitempty"`
	Customer    models.CustomerRecord `bson:"customer" json:"customer"`
	Payment     PaymentInput          `bson:"payment" json:"payment"`
	InvoiceNo   string                `bson:"invoice_no,omitempty" json:"invoice_no,omitempty"`
	Version     int64                 `bson:"version" json:"version"`
	CreatedAt   time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time             `bson:"updated_at" json:"updated_at"`
}

// NewSession opens a checkout. A reservation seed prefills the cart and the
// customer; the reservation channel requires one.
func NewSession(id, cashierID string, channel Channel, seed *ReservationSeed, now time.Time) (*Session, error) {
	if channel != ChannelPOS && channel != ChannelReservation {
		return nil, ErrUnknownChannel
	}
	if channel == ChannelReservation && (seed == nil || seed.ID == 0) {
		return nil, ErrNoReservation
	}

	s := &Session{
		ID:        id,
		CashierID: cashierID,
		Channel:   channel,
		Status:    StatusOpen,
		Customer:  models.CustomerRecord{OutstandingCredit: decimal.Zero},
		Payment:   PaymentInput{Mode: ModeCash},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if seed != nil {
		if seed.ID == 0 {
			return nil, ErrNoReservation
		}
		s.Reservation = NewReservationContext(*seed)
		for _, it := range seed.Items {
			line := LineFromReservation(it)
			if i := s.Cart.index(line.ProductID, line.SizeLabel); i >= 0 {
				s.Cart.Lines[i].Quantity += line.Quantity
				s.Cart.Lines[i].Available += line.Available
				continue
			}
			s.Cart.Lines = append(s.Cart.Lines, line)
		}
		s.Customer.Name = seed.CustomerName
		s.Customer.Phone = seed.CustomerPhone
	}
	return s, nil
}

// Editable rejects changes while a sale is being submitted or after it closed.
func (s *Session) Editable() error {
	switch s.Status {
	case StatusProcessing:
		return ErrCheckoutInFlight
	case StatusClosed:
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) Totals() Totals {
	return Price(s.Cart, s.Reservation.Discount())
}

func (s *Session) AddLine(p models.Product, size models.ProductSize) error {
	if err := s.Editable(); err != nil {
		return err
	}
	return s.Cart.AddLine(p, size)
}

func (s *Session) UpdateQuantity(productID int64, sizeLabel string, qty int) error {
	if err := s.Editable(); err != nil {
		return err
	}
	return s.Cart.UpdateQuantity(productID, sizeLabel, qty)
}

func (s *Session) RemoveLine(productID int64, sizeLabel string) error {
	if err := s.Editable(); err != nil {
		return err
	}
	s.Cart.RemoveLine(productID, sizeLabel)
	return nil
}

func (s *Session) ProcessReturn(productID int64, sizeLabel string, qty int) (int, error) {
	if err := s.Editable(); err != nil {
		return 0, err
	}
	return s.Cart.ProcessReturn(productID, sizeLabel, qty)
}

func (s *Session) BeginVerification(code string) error {
	if err := s.Editable(); err != nil {
		return err
	}
	if s.Reservation == nil {
		return ErrNoReservation
	}
	return s.Reservation.Begin(code)
}

// SetCustomer replaces the customer. The payment form is kept; it is
// re-validated at checkout.
func (s *Session) SetCustomer(c models.CustomerRecord) error {
	if err := s.Editable(); err != nil {
		return err
	}
	if c.OutstandingCredit.IsNegative() {
		c.OutstandingCredit = decimal.Zero
	}
	s.Customer = c
	return nil
}

// SetPayment validates the form against the current total before storing it.
func (s *Session) SetPayment(in PaymentInput) (PaymentSplit, error) {
	if err := s.Editable(); err != nil {
		return PaymentSplit{}, err
	}
	split, err := s.split(in)
	if err != nil {
		return PaymentSplit{}, err
	}
	in.Mode = split.Mode
	s.Payment = in
	return split, nil
}

func (s *Session) split(in PaymentInput) (PaymentSplit, error) {
	if s.Channel == ChannelReservation && in.SettleCreditAmount != nil && !in.SettleCreditAmount.IsZero() {
		return PaymentSplit{}, ErrSettleNotAllowed
	}
	return Split(s.Totals().Total, in, s.Customer)
}

// Receipt is the outcome of a validated checkout, before submission.
type Receipt struct {
	Payload models.SalePayload
	Totals  Totals
	Split   PaymentSplit
	Ledger  LedgerAdjustment
}

// Prepare runs every checkout precondition and assembles the sale payload.
// A nil stock skips the live stock check.
func (s *Session) Prepare(stock StockIndex) (Receipt, error) {
	if err := s.Editable(); err != nil {
		return Receipt{}, err
	}
	if s.Cart.IsEmpty() {
		return Receipt{}, ErrEmptyCart
	}
	if s.Reservation != nil && !s.Reservation.Verified() {
		return Receipt{}, ErrReservationUnverified
	}

	split, err := s.split(s.Payment)
	if err != nil {
		return Receipt{}, err
	}
	if stock != nil {
		if err := stock.Check(s.Cart); err != nil {
			return Receipt{}, err
		}
	}

	totals := s.Totals()
	ledger := Reconcile(split)
	return Receipt{
		Payload: s.payload(totals, split, ledger),
		Totals:  totals,
		Split:   split,
		Ledger:  ledger,
	}, nil
}

func (s *Session) payload(t Totals, split PaymentSplit, ledger LedgerAdjustment) models.SalePayload {
	lines := make([]models.SaleLine, 0, len(s.Cart.Lines))
	for _, l := range s.Cart.Lines {
		lines = append(lines, models.SaleLine{
			ID:        l.ProductID,
			ProductID: l.ProductID,
			SizeLabel: l.SizeLabel,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	p := models.SalePayload{
		Cart:     lines,
		Subtotal: t.Subtotal,
		Discount: t.Discount,
		Total:    t.Total,
		Customer: models.SaleCustomer{
			Name:  strings.TrimSpace(s.Customer.Name),
			Phone: strings.TrimSpace(s.Customer.Phone),
		},
		Payment: models.SalePayment{
			Mode:               string(split.Mode),
			PaidAmount:         split.PaidAmount,
			CreditAmount:       split.CreditAmount,
			SettleCreditAmount: split.SettleCreditAmount,
			LedgerAdjustment:   ledger.Net,
		},
	}
	if s.Reservation != nil {
		id := s.Reservation.ReservationID
		p.ReservationID = &id
	}
	return p
}

// BeginProcessing marks the session as submitted; a second checkout is rejected.
func (s *Session) BeginProcessing() error {
	if err := s.Editable(); err != nil {
		return err
	}
	s.Status = StatusProcessing
	return nil
}

// AbortProcessing returns a failed submission to the open state.
func (s *Session) AbortProcessing() {
	if s.Status == StatusProcessing {
		s.Status = StatusOpen
	}
}

func (s *Session) Close(invoiceNo string) {
	s.Status = StatusClosed
	s.InvoiceNo = invoiceNo
}

func (s *Session) Clone() *Session {
	cp := *s
	cp.Cart = s.Cart.Clone()
	cp.Reservation = s.Reservation.Clone()
	cp.Payment = clonePayment(s.Payment)
	return &cp
}

func clonePayment(p PaymentInput) PaymentInput {
	dup := func(d *decimal.Decimal) *decimal.Decimal {
		if d == nil {
			return nil
		}
		v := *d
		return &v
	}
	return PaymentInput{
		Mode:               p.Mode,
		PaidAmount:         dup(p.PaidAmount),
		CreditAmount:       dup(p.CreditAmount),
		SettleCreditAmount: dup(p.SettleCreditAmount),
	}
}
