// Package cart implements the order-composition cart: configured line items,
// quantity mutation, and running totals.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/najugourmet/storefront/internal/domain/selection"
)

// LineItem is one configured product instance in the cart. Its ID is unique
// per add event, not per product: adding the same product twice yields two
// independent lines.
type LineItem struct {
	ID          string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Selections  []selection.Resolved
	// TotalPrice caches (UnitPrice + sum of charged selections) x Quantity.
	// Quantity changes rescale it proportionally rather than recomputing it;
	// decimal arithmetic keeps the rescale exact.
	TotalPrice decimal.Decimal
}

// NewLineItem builds a line item and prices it from the unit price plus the
// charged selection prices.
func NewLineItem(id, productID, productName string, unitPrice decimal.Decimal, quantity int, selections []selection.Resolved) LineItem {
	unit := unitPrice
	for _, sel := range selections {
		unit = unit.Add(sel.Charged)
	}
	return LineItem{
		ID:          id,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Selections:  selections,
		TotalPrice:  unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Cart is an ordered sequence of line items. All operations are total: they
// return the resulting cart and treat unknown ids as no-ops.
type Cart struct {
	Items []LineItem
}

// Add appends a line item.
func (c Cart) Add(item LineItem) Cart {
	items := make([]LineItem, 0, len(c.Items)+1)
	items = append(items, c.Items...)
	items = append(items, item)
	return Cart{Items: items}
}

// Remove drops the line item with the given id.
func (c Cart) Remove(itemID string) Cart {
	items := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	return Cart{Items: items}
}

// UpdateQuantity sets the quantity of a line item, rescaling its cached total
// proportionally. A quantity of zero or less removes the line.
func (c Cart) UpdateQuantity(itemID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(itemID)
	}
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	for i, item := range items {
		if item.ID != itemID {
			continue
		}
		perUnit := item.TotalPrice.Div(decimal.NewFromInt(int64(item.Quantity)))
		items[i].Quantity = quantity
		items[i].TotalPrice = perUnit.Mul(decimal.NewFromInt(int64(quantity)))
	}
	return Cart{Items: items}
}

// Clear empties the cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// TotalItems is the sum of line quantities, recomputed on every read.
func (c Cart) TotalItems() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// TotalPrice is the sum of line totals, recomputed on every read.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
