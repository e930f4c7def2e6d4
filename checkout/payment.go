package checkout

import (
	"fmt"
	"strings"

	"storepos/models"

	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	ModeCash   PaymentMode = "cash"
	ModeCard   PaymentMode = "card"
	ModeGPay   PaymentMode = "gpay"
	ModeCredit PaymentMode = "credit"
	ModeMixed  PaymentMode = "mixed"
)

func ParsePaymentMode(s string) (PaymentMode, error) {
	m := PaymentMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeCash, ModeCard, ModeGPay, ModeCredit, ModeMixed:
		return m, nil
	case "":
		return ModeCash, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMode, s)
}

// Immediate reports whether the mode collects money at the till.
func (m PaymentMode) Immediate() bool {
	return m == ModeCash || m == ModeCard || m == ModeGPay
}

// PaymentInput is what the operator entered in the payment form. Nil amounts
// mean the field was left empty.
type PaymentInput struct {
	Mode               PaymentMode      `bson:"mode" json:"mode"`
	PaidAmount         *decimal.Decimal `bson:"paid_amount,omitempty" json:"paid_amount,omitempty"`
	CreditAmount       *decimal.Decimal `bson:"credit_amount,omitempty" json:"credit_amount,omitempty"`
	SettleCreditAmount *decimal.Decimal `bson:"settle_credit_amount,omitempty" json:"settle_credit_amount,omitempty"`
}

// PaymentSplit is the resolved payment. PaidAmount + CreditAmount == total.
type PaymentSplit struct {
	Mode               PaymentMode     `json:"mode"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	CreditAmount       decimal.Decimal `json:"credit_amount"`
	SettleCreditAmount decimal.Decimal `json:"settle_credit_amount"`
	Tendered           decimal.Decimal `json:"tendered"`
	Change             decimal.Decimal `json:"change"`
}

// Split resolves the operator's input against the sale total.
//
//	cash/card/gpay: paid = input ?? total, credit = max(total − paid, 0)
//	credit:         paid = 0, credit = total
//	mixed:          credit = input with 0 < credit < total, paid = total − credit
//
// Any credit requires a customer phone. A settle amount is only accepted with
// cash, card or gpay and is capped at the customer's outstanding credit.
func Split(total decimal.Decimal, in PaymentInput, customer models.CustomerRecord) (PaymentSplit, error) {
	mode, err := ParsePaymentMode(string(in.Mode))
	if err != nil {
		return PaymentSplit{}, err
	}
	total = total.Round(2)

	split := PaymentSplit{
		Mode:               mode,
		PaidAmount:         decimal.Zero,
		CreditAmount:       decimal.Zero,
		SettleCreditAmount: decimal.Zero,
		Tendered:           decimal.Zero,
		Change:             decimal.Zero,
	}

	switch mode {
	case ModeCredit:
		split.CreditAmount = total

	case ModeMixed:
		if in.CreditAmount == nil {
			return PaymentSplit{}, ErrInvalidCreditPortion
		}
		credit := in.CreditAmount.Round(2)
		if !credit.IsPositive() || credit.GreaterThanOrEqual(total) {
			return PaymentSplit{}, ErrInvalidCreditPortion
		}
		split.CreditAmount = credit
		split.PaidAmount = total.Sub(credit)
		split.Tendered = split.PaidAmount

	default:
		paid := total
		if in.PaidAmount != nil {
			paid = in.PaidAmount.Round(2)
		}
		if paid.IsNegative() {
			return PaymentSplit{}, ErrNegativeAmount
		}
		split.Tendered = paid
		if paid.GreaterThan(total) {
			split.Change = paid.Sub(total)
			paid = total
		}
		split.PaidAmount = paid
		split.CreditAmount = total.Sub(paid)
	}

	if split.CreditAmount.IsPositive() && strings.TrimSpace(customer.Phone) == "" {
		return PaymentSplit{}, ErrCustomerRequired
	}

	if in.SettleCreditAmount != nil && !in.SettleCreditAmount.IsZero() {
		settle, err := settleAmount(mode, *in.SettleCreditAmount, customer)
		if err != nil {
			return PaymentSplit{}, err
		}
		split.SettleCreditAmount = settle
	}

	return split, nil
}

func settleAmount(mode PaymentMode, amount decimal.Decimal, customer models.CustomerRecord) (decimal.Decimal, error) {
	if !mode.Immediate() {
		return decimal.Zero, ErrSettleNotAllowed
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidSettleAmount
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return decimal.Zero, ErrCustomerRequired
	}
	if !customer.HasCredit() {
		return decimal.Zero, ErrNothingToSettle
	}
	return decimal.Min(amount, customer.OutstandingCredit.Round(2)), nil
}
