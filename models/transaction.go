package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is the local journal entry written after the storefront accepted a sale.
type SaleRecord struct {
	ID               string          `bson:"_id" json:"id"`
	SessionID        string          `bson:"session_id" json:"session_id"`
	CashierID        string          `bson:"cashier_id" json:"cashier_id"`
	Channel          string          `bson:"channel" json:"channel"`
	InvoiceNo        string          `bson:"invoice_no" json:"invoice_no"`
	ReservationID    *int64          `bson:"reservation_id,omitempty" json:"reservation_id,omitempty"`
	CustomerName     string          `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CustomerPhone    string          `bson:"customer_phone,omitempty" json:"customer_phone,omitempty"`
	Lines            []SaleLine      `bson:"lines" json:"lines"`
	Subtotal         decimal.Decimal `bson:"subtotal" json:"subtotal"`
	Discount         decimal.Decimal `bson:"discount" json:"discount"`
	Total            decimal.Decimal `bson:"total" json:"total"`
	PaymentMode      string          `bson:"payment_mode" json:"payment_mode"`
	PaidAmount       decimal.Decimal `bson:"paid_amount" json:"paid_amount"`
	CreditAmount     decimal.Decimal `bson:"credit_amount" json:"credit_amount"`
	SettledAmount    decimal.Decimal `bson:"settled_amount" json:"settled_amount"`
	LedgerAdjustment decimal.Decimal `bson:"ledger_adjustment" json:"ledger_adjustment"`
	Collected        decimal.Decimal `bson:"collected" json:"collected"`
	CreatedAt        time.Time       `bson:"created_at" json:"created_at"`
}
