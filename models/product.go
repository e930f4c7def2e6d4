package models

import (
	"github.com/shopspring/decimal"
)

// ProductSize is one sellable size of a storefront product together with the
// stock the storefront reported when the catalog was fetched.
type ProductSize struct {
	ID        int64           `bson:"id,omitempty" json:"id,omitempty"`
	SizeLabel string          `bson:"size_label" json:"size_label"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Quantity  int             `bson:"quantity" json:"quantity"`
}

type Product struct {
	ID    int64         `bson:"id" json:"id"`
	Name  string        `bson:"name" json:"name"`
	Sizes []ProductSize `bson:"sizes" json:"sizes"`
}

// Size returns the size with the given label.
func (p Product) Size(label string) (ProductSize, bool) {
	for _, s := range p.Sizes {
		if s.SizeLabel == label {
			return s, true
		}
	}
	return ProductSize{}, false
}

// CustomerRecord is the local, read-mostly copy of a customer looked up by phone.
// The storefront owns the credit ledger; OutstandingCredit is only refreshed.
type CustomerRecord struct {
	Name              string          `bson:"name" json:"name"`
	Phone             string          `bson:"phone" json:"phone"`
	OutstandingCredit decimal.Decimal `bson:"outstanding_credit" json:"outstanding_credit"`
}

// HasCredit сообщает, есть ли у клиента непогашенный долг
func (c CustomerRecord) HasCredit() bool {
	return c.OutstandingCredit.IsPositive()
}
