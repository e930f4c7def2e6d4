package checkout

import (
	"fmt"

	"storepos/models"

	"github.com/shopspring/decimal"
)

// LineItem is one (product, size) entry of a cart.
type LineItem struct {
	ProductID int64           `bson:"product_id" json:"product_id"`
	SizeLabel string          `bson:"size_label" json:"size_label"`
	Name      string          `bson:"name" json:"name"`
	UnitPrice decimal.Decimal `bson:"unit_price" json:"unit_price"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	// Available is the stock the storefront reported for this size the last
	// time the line was added to.
	Available int `bson:"available" json:"available"`
}

// LineTotal returns quantity × unit price.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) matches(productID int64, sizeLabel string) bool {
	return l.ProductID == productID && l.SizeLabel == sizeLabel
}

// NewLineItem is the only place a catalog product becomes a cart line.
func NewLineItem(p models.Product, size models.ProductSize) LineItem {
	label := size.SizeLabel
	if label == "" {
		label = DefaultSizeLabel
	}
	return LineItem{
		ProductID: p.ID,
		SizeLabel: label,
		Name:      p.Name,
		UnitPrice: size.Price.Round(2),
		Quantity:  1,
		Available: size.Quantity,
	}
}

// DefaultSizeLabel is used for products sold without a size.
const DefaultSizeLabel = "Default"

// Cart keeps lines in insertion order; (ProductID, SizeLabel) is unique.
type Cart struct {
	Lines []LineItem `bson:"lines" json:"lines"`
}

func (c *Cart) index(productID int64, sizeLabel string) int {
	for i := range c.Lines {
		if c.Lines[i].matches(productID, sizeLabel) {
			return i
		}
	}
	return -1
}

// Line returns a copy of the matching line.
func (c *Cart) Line(productID int64, sizeLabel string) (LineItem, bool) {
	if i := c.index(productID, sizeLabel); i >= 0 {
		return c.Lines[i], true
	}
	return LineItem{}, false
}

// AddLine adds one unit of the given size. An existing line is incremented,
// capped at the size's reported stock; otherwise a new line is appended.
func (c *Cart) AddLine(p models.Product, size models.ProductSize) error {
	if size.Quantity <= 0 {
		return fmt.Errorf("%w: %s (%s)", ErrOutOfStock, p.Name, size.SizeLabel)
	}

	line := NewLineItem(p, size)
	if i := c.index(line.ProductID, line.SizeLabel); i >= 0 {
		newQty := c.Lines[i].Quantity + 1
		if newQty > size.Quantity {
			return fmt.Errorf("%w: %s (%s), available %d", ErrNotEnoughStock, p.Name, line.SizeLabel, size.Quantity)
		}
		c.Lines[i].Quantity = newQty
		c.Lines[i].Available = size.Quantity
		return nil
	}

	c.Lines = append(c.Lines, line)
	return nil
}

// UpdateQuantity sets the quantity of a line. Stock is not re-checked here;
// checkout re-validates every line against live stock.
func (c *Cart) UpdateQuantity(productID int64, sizeLabel string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	i := c.index(productID, sizeLabel)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].Quantity = qty
	return nil
}

// RemoveLine deletes the matching line. Removing an absent line is a no-op.
func (c *Cart) RemoveLine(productID int64, sizeLabel string) {
	i := c.index(productID, sizeLabel)
	if i < 0 {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// ProcessReturn takes qty units back out of a line, never below zero.
// A line that reaches zero is removed. It returns the remaining quantity.
func (c *Cart) ProcessReturn(productID int64, sizeLabel string, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidReturnQuantity
	}
	i := c.index(productID, sizeLabel)
	if i < 0 {
		return 0, ErrLineNotFound
	}

	remaining := c.Lines[i].Quantity - qty
	if remaining <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return 0, nil
	}
	c.Lines[i].Quantity = remaining
	return remaining, nil
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Units is the total number of items in the cart.
func (c Cart) Units() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]LineItem, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
