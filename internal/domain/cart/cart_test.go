package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najugourmet/storefront/internal/domain/selection"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newItem(id string, unitPrice string, quantity int, charged ...string) LineItem {
	sels := make([]selection.Resolved, len(charged))
	for i, c := range charged {
		sels[i] = selection.Resolved{
			CategoryID:   "cat",
			CategoryName: "Topping",
			FlavorID:     "f",
			FlavorName:   "Flavor",
			Charged:      dec(c),
		}
	}
	return NewLineItem(id, "p1", "Açaí 300ml", dec(unitPrice), quantity, sels)
}

func TestNewLineItem_PricesUnitPlusCharges(t *testing.T) {
	item := newItem("i1", "22.00", 2, "5.00", "0")
	assert.True(t, dec("54.00").Equal(item.TotalPrice))
}

func TestCart_AddRemove(t *testing.T) {
	c := Cart{}.Add(newItem("i1", "22.00", 1)).Add(newItem("i2", "10.00", 1))
	require.Len(t, c.Items, 2)

	c = c.Remove("i1")
	require.Len(t, c.Items, 1)
	assert.Equal(t, "i2", c.Items[0].ID)

	// Unknown ids are no-ops.
	c = c.Remove("ghost")
	assert.Len(t, c.Items, 1)
}

func TestCart_UpdateQuantityRescales(t *testing.T) {
	item := newItem("i1", "22.00", 1, "5.00")
	c := Cart{}.Add(item)

	c = c.UpdateQuantity("i1", 3)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.True(t, dec("81.00").Equal(c.Items[0].TotalPrice))

	// totalPrice == unitTotal * quantity after any update.
	perUnit := item.TotalPrice.Div(decimal.NewFromInt(int64(item.Quantity)))
	assert.True(t, perUnit.Mul(decimal.NewFromInt(3)).Equal(c.Items[0].TotalPrice))
}

func TestCart_UpdateQuantityRepeatedRescaleStaysExact(t *testing.T) {
	c := Cart{}.Add(newItem("i1", "22.00", 1, "5.00"))
	for _, q := range []int{5, 2, 7, 1, 4} {
		c = c.UpdateQuantity("i1", q)
	}
	require.Equal(t, 4, c.Items[0].Quantity)
	assert.True(t, dec("108.00").Equal(c.Items[0].TotalPrice), "rescale must not drift")
}

func TestCart_UpdateQuantityZeroRemoves(t *testing.T) {
	c := Cart{}.Add(newItem("i1", "22.00", 2))
	c = c.UpdateQuantity("i1", 0)
	assert.Empty(t, c.Items)

	c = Cart{}.Add(newItem("i1", "22.00", 2)).UpdateQuantity("i1", -3)
	assert.Empty(t, c.Items)
}

func TestCart_Totals(t *testing.T) {
	c := Cart{}
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())

	c = c.Add(newItem("i1", "22.00", 2, "5.00")) // 54.00
	c = c.Add(newItem("i2", "10.00", 1))         // 10.00

	assert.Equal(t, 3, c.TotalItems())
	assert.True(t, dec("64.00").Equal(c.TotalPrice()))

	c = c.UpdateQuantity("i2", 4) // 40.00
	assert.Equal(t, 6, c.TotalItems())
	assert.True(t, dec("94.00").Equal(c.TotalPrice()))

	c = c.Remove("i1")
	assert.Equal(t, 4, c.TotalItems())
	assert.True(t, dec("40.00").Equal(c.TotalPrice()))

	c = c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.TotalPrice().IsZero())
}
