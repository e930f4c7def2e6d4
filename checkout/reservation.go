package checkout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type VerificationState string

const (
	Unverified VerificationState = "unverified"
	Verifying  VerificationState = "verifying"
	Verified   VerificationState = "verified"
)

// DefaultAdvancePerUnit is the deposit credited per reserved unit when the
// storefront does not report an advance amount.
var DefaultAdvancePerUnit = decimal.NewFromInt(150)

// ReservedItem is one product/size/quantity held by a reservation.
type ReservedItem struct {
	ProductID int64           `bson:"product_id" json:"product_id"`
	Name      string          `bson:"name" json:"name"`
	SizeLabel string          `bson:"size_label" json:"size_label"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Quantity  int             `bson:"quantity" json:"quantity"`
}

// ReservationSeed is what the till knows about a reservation when checkout
// is opened from it.
type ReservationSeed struct {
	ID            int64          `json:"id"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Items         []ReservedItem `json:"items"`
}

// LineFromReservation turns a reserved item into a cart line. The reserved
// quantity is the stock held for it.
func LineFromReservation(it ReservedItem) LineItem {
	label := it.SizeLabel
	if label == "" {
		label = DefaultSizeLabel
	}
	qty := it.Quantity
	if qty < 1 {
		qty = 1
	}
	return LineItem{
		ProductID: it.ProductID,
		SizeLabel: label,
		Name:      it.Name,
		UnitPrice: it.Price.Round(2),
		Quantity:  qty,
		Available: qty,
	}
}

// ReservationContext tracks verification of a reservation code:
// unverified → verifying → verified, or back to unverified on failure.
type ReservationContext struct {
	ReservationID  int64             `bson:"reservation_id" json:"reservation_id"`
	CustomerName   string            `bson:"customer_name" json:"customer_name"`
	CustomerPhone  string            `bson:"customer_phone,omitempty" json:"customer_phone,omitempty"`
	ReservedUnits  int               `bson:"reserved_units" json:"reserved_units"`
	State          VerificationState `bson:"state" json:"state"`
	DiscountAmount decimal.Decimal   `bson:"discount_amount" json:"discount_amount"`
	LastError      string            `bson:"last_error,omitempty" json:"last_error,omitempty"`
	VerifiedAt     *time.Time        `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

func NewReservationContext(seed ReservationSeed) *ReservationContext {
	units := 0
	for _, it := range seed.Items {
		if it.Quantity > 0 {
			units += it.Quantity
		} else {
			units++
		}
	}
	return &ReservationContext{
		ReservationID:  seed.ID,
		CustomerName:   seed.CustomerName,
		CustomerPhone:  seed.CustomerPhone,
		ReservedUnits:  units,
		State:          Unverified,
		DiscountAmount: decimal.Zero,
	}
}

func (r *ReservationContext) Verified() bool {
	return r != nil && r.State == Verified
}

// Discount is zero until the reservation is verified.
func (r *ReservationContext) Discount() decimal.Decimal {
	if !r.Verified() {
		return decimal.Zero
	}
	return r.DiscountAmount
}

// Begin moves unverified → verifying for a non-empty code.
func (r *ReservationContext) Begin(code string) error {
	if r == nil || r.ReservationID == 0 {
		return ErrNoReservation
	}
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	switch r.State {
	case Verifying:
		return ErrVerificationInFlight
	case Verified:
		return ErrAlreadyVerified
	}
	r.State = Verifying
	r.LastError = ""
	return nil
}

// Confirm moves verifying → verified and sets the discount to the advance
// reported by the storefront, or perUnit × reserved units when it reported none.
func (r *ReservationContext) Confirm(advance, perUnit decimal.Decimal, at time.Time) error {
	if r == nil || r.State != Verifying {
		return ErrNotVerifying
	}
	if !advance.IsPositive() {
		units := r.ReservedUnits
		if units < 1 {
			units = 1
		}
		advance = perUnit.Mul(decimal.NewFromInt(int64(units)))
	}
	r.State = Verified
	r.DiscountAmount = advance.Round(2)
	r.LastError = ""
	r.VerifiedAt = &at
	return nil
}

// Fail moves verifying → unverified; the operator may retry.
func (r *ReservationContext) Fail(reason string) error {
	if r == nil || r.State != Verifying {
		return ErrNotVerifying
	}
	r.State = Unverified
	r.DiscountAmount = decimal.Zero
	r.LastError = reason
	return nil
}

func (r *ReservationContext) Clone() *ReservationContext {
	if r == nil {
		return nil
	}
	cp := *r
	if r.VerifiedAt != nil {
		t := *r.VerifiedAt
		cp.VerifiedAt = &t
	}
	return &cp
}
