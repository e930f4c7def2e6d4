package checkout

import (
	"testing"

	"storepos/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func kurta() (models.Product, models.ProductSize) {
	size := models.ProductSize{SizeLabel: "M", Price: dec("500"), Quantity: 3}
	return models.Product{ID: 7, Name: "Kurta", Sizes: []models.ProductSize{size}}, size
}

func TestAddLine_AppendsNewLine(t *testing.T) {
	var c Cart
	p, size := kurta()

	require.NoError(t, c.AddLine(p, size))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(7), c.Lines[0].ProductID)
	assert.Equal(t, "M", c.Lines[0].SizeLabel)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, 3, c.Lines[0].Available)
	assert.True(t, c.Lines[0].UnitPrice.Equal(dec("500")))
}

func TestAddLine_MergesSameProductAndSize(t *testing.T) {
	var c Cart
	p, size := kurta()

	require.NoError(t, c.AddLine(p, size))
	require.NoError(t, c.AddLine(p, size))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddLine_DifferentSizesAreSeparateLines(t *testing.T) {
	var c Cart
	p, m := kurta()
	l := models.ProductSize{SizeLabel: "L", Price: dec("550"), Quantity: 1}

	require.NoError(t, c.AddLine(p, m))
	require.NoError(t, c.AddLine(p, l))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "M", c.Lines[0].SizeLabel)
	assert.Equal(t, "L", c.Lines[1].SizeLabel)
}

func TestAddLine_RejectsOverStock(t *testing.T) {
	var c Cart
	p, size := kurta()
	size.Quantity = 2

	require.NoError(t, c.AddLine(p, size))
	require.NoError(t, c.AddLine(p, size))
	err := c.AddLine(p, size)

	assert.ErrorIs(t, err, ErrNotEnoughStock)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddLine_RejectsOutOfStock(t *testing.T) {
	var c Cart
	p, size := kurta()
	size.Quantity = 0

	err := c.AddLine(p, size)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.True(t, c.IsEmpty())
}

func TestAddLine_EmptySizeLabelUsesDefault(t *testing.T) {
	var c Cart
	p := models.Product{ID: 1, Name: "Scarf"}

	require.NoError(t, c.AddLine(p, models.ProductSize{Price: dec("99"), Quantity: 5}))
	require.NoError(t, c.AddLine(p, models.ProductSize{Price: dec("99"), Quantity: 5}))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, DefaultSizeLabel, c.Lines[0].SizeLabel)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	var c Cart
	p, size := kurta()
	require.NoError(t, c.AddLine(p, size))

	// stock is not re-checked here
	require.NoError(t, c.UpdateQuantity(7, "M", 10))
	assert.Equal(t, 10, c.Lines[0].Quantity)

	assert.ErrorIs(t, c.UpdateQuantity(7, "M", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateQuantity(7, "XL", 2), ErrLineNotFound)
	assert.Equal(t, 10, c.Lines[0].Quantity)
}

func TestRemoveLine_AbsentIsNoop(t *testing.T) {
	var c Cart
	p, size := kurta()
	require.NoError(t, c.AddLine(p, size))
	before := c.Clone()

	c.RemoveLine(99, "M")
	c.RemoveLine(7, "S")

	assert.Equal(t, before, c)

	c.RemoveLine(7, "M")
	assert.True(t, c.IsEmpty())
}

func TestProcessReturn(t *testing.T) {
	var c Cart
	p, size := kurta()
	require.NoError(t, c.AddLine(p, size))
	require.NoError(t, c.UpdateQuantity(7, "M", 3))

	left, err := c.ProcessReturn(7, "M", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	_, err = c.ProcessReturn(7, "M", 0)
	assert.ErrorIs(t, err, ErrInvalidReturnQuantity)

	left, err = c.ProcessReturn(7, "M", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
	assert.True(t, c.IsEmpty())

	_, err = c.ProcessReturn(7, "M", 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestCloneIsIndependent(t *testing.T) {
	var c Cart
	p, size := kurta()
	require.NoError(t, c.AddLine(p, size))

	cp := c.Clone()
	require.NoError(t, cp.UpdateQuantity(7, "M", 3))

	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, 3, cp.Units())
}
