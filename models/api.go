package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Request and response bodies of the storefront REST API.

type SaleLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	SizeLabel string          `json:"size_label"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type SaleCustomer struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type SalePayment struct {
	Mode               string          `json:"mode"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	CreditAmount       decimal.Decimal `json:"credit_amount"`
	SettleCreditAmount decimal.Decimal `json:"settle_credit_amount"`
	LedgerAdjustment   decimal.Decimal `json:"ledger_adjustment"`
}

type SalePayload struct {
	Cart          []SaleLine      `json:"cart"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	ReservationID *int64          `json:"reservation_id"`
	Customer      SaleCustomer    `json:"customer"`
	Payment       SalePayment     `json:"payment"`
}

// Envelope is the {success, message} part every storefront POS response carries.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CustomerInfoResponse struct {
	Envelope
	Data struct {
		Name              string          `json:"name"`
		Phone             string          `json:"phone"`
		OutstandingCredit decimal.Decimal `json:"outstanding_credit"`
	} `json:"data"`
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

type VerifyCodeResponse struct {
	Envelope
	AdvanceAmount decimal.Decimal `json:"advance_amount"`
}

type CreateSaleResponse struct {
	Envelope
	Data struct {
		SaleID    json.Number     `json:"sale_id"`
		InvoiceNo string          `json:"invoice_no"`
		Total     decimal.Decimal `json:"total"`
	} `json:"data"`
}

type ReservationSaleResponse struct {
	Envelope
	Invoice string          `json:"invoice"`
	Total   decimal.Decimal `json:"total"`
}

type SettleCreditRequest struct {
	Phone       string          `json:"phone"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode string          `json:"payment_mode"`
}

type SettleCreditResponse struct {
	Envelope
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	RemainingCredit decimal.Decimal `json:"remaining_credit"`
}

type ReturnItem struct {
	ProductID int64  `json:"product_id"`
	SizeLabel string `json:"size_label"`
	Quantity  int    `json:"quantity"`
}

type ReturnRequest struct {
	SaleItem  ReturnItem `json:"sale_item"`
	Reason    string     `json:"reason"`
	InvoiceNo string     `json:"invoice_no"`
}

type PagedProducts struct {
	Results []Product `json:"results"`
}
