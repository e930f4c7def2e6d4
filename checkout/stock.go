package checkout

import (
	"fmt"

	"storepos/models"
)

type stockKey struct {
	productID int64
	sizeLabel string
}

// StockIndex is a snapshot of live stock by (product, size).
type StockIndex map[stockKey]int

func IndexStock(products []models.Product) StockIndex {
	idx := make(StockIndex)
	for _, p := range products {
		for _, s := range p.Sizes {
			label := s.SizeLabel
			if label == "" {
				label = DefaultSizeLabel
			}
			idx[stockKey{p.ID, label}] = s.Quantity
		}
	}
	return idx
}

func (idx StockIndex) Available(productID int64, sizeLabel string) (int, bool) {
	q, ok := idx[stockKey{productID, sizeLabel}]
	return q, ok
}

// Check fails on the first line asking for more than the live stock.
func (idx StockIndex) Check(c Cart) error {
	for _, l := range c.Lines {
		avail, ok := idx.Available(l.ProductID, l.SizeLabel)
		if !ok {
			return fmt.Errorf("%w: %s (%s)", ErrUnknownSize, l.Name, l.SizeLabel)
		}
		if l.Quantity > avail {
			return fmt.Errorf("%w for %s (%s): requested %d, available %d", ErrNotEnoughStock, l.Name, l.SizeLabel, l.Quantity, avail)
		}
	}
	return nil
}
