package checkout

import "github.com/shopspring/decimal"

// LedgerAdjustment is the single change a sale makes to the customer's credit
// balance. Net > 0 means the customer owes more after the sale, Net < 0 means
// older debt was paid down.
type LedgerAdjustment struct {
	NewCredit decimal.Decimal `json:"new_credit"`
	Settled   decimal.Decimal `json:"settled"`
	Net       decimal.Decimal `json:"net"`
	// Collected is the money taken at the till: the sale's paid part plus
	// any settled debt.
	Collected decimal.Decimal `json:"collected"`
}

func Reconcile(split PaymentSplit) LedgerAdjustment {
	return LedgerAdjustment{
		NewCredit: split.CreditAmount,
		Settled:   split.SettleCreditAmount,
		Net:       split.CreditAmount.Sub(split.SettleCreditAmount),
		Collected: split.PaidAmount.Add(split.SettleCreditAmount),
	}
}
