package events

import (
	"storepos/models"

	"github.com/shopspring/decimal"
)

type SaleCompletedEvent struct {
	Sale models.SaleRecord
}

type CreditSettledEvent struct {
	Phone     string
	Settled   decimal.Decimal
	Remaining decimal.Decimal
	Mode      string
}
