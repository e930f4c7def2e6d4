package checkout

import "errors"

// Validation errors. All of them are returned before any state is changed.
var (
	ErrOutOfStock            = errors.New("out of stock")
	ErrNotEnoughStock        = errors.New("not enough stock")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrInvalidReturnQuantity = errors.New("return quantity must be positive")
	ErrLineNotFound          = errors.New("line not found in cart")
	ErrUnknownSize           = errors.New("size not found for product")

	ErrEmptyCode             = errors.New("enter reservation code")
	ErrNoReservation         = errors.New("reservation not available")
	ErrVerificationInFlight  = errors.New("verification already in progress")
	ErrAlreadyVerified       = errors.New("reservation already verified")
	ErrNotVerifying          = errors.New("no verification in progress")
	ErrReservationUnverified = errors.New("verify reservation first")

	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnknownPaymentMode   = errors.New("unknown payment mode")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrInvalidCreditPortion = errors.New("enter valid credit portion")
	ErrCustomerRequired     = errors.New("customer phone is required when credit is given")
	ErrSettleNotAllowed     = errors.New("credit settlement is only accepted with cash, card or gpay")
	ErrNothingToSettle      = errors.New("customer has no outstanding credit")
	ErrInvalidSettleAmount  = errors.New("enter valid settle amount")

	ErrCheckoutInFlight = errors.New("checkout already in progress")
	ErrSessionClosed    = errors.New("checkout session is closed")
	ErrUnknownChannel   = errors.New("unknown checkout channel")
)
