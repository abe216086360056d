// Package selection implements the flavor selection rules: which option
// categories apply to a product, how topping-style categories split into free
// and paid pools, and how a set of selections is validated and priced.
package selection

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/najugourmet/storefront/internal/domain/catalog"
)

// Pool identifies which selection pool of a flavor category a virtual
// category represents.
type Pool int

const (
	// PoolAll is an unsplit category: all of its flavors in one pool.
	PoolAll Pool = iota
	// PoolFree is the free half of a split category: one selection, charged 0.
	PoolFree
	// PoolPaid is the paid half of a split category: one selection at the
	// flavor's extra price.
	PoolPaid
)

// Category is a (possibly virtual) selection category derived from the
// catalog. Split categories produce two Category values sharing the same
// CategoryID but different pools; the underlying catalog row stays the source
// of truth.
type Category struct {
	CategoryID    string
	Name          string
	Pool          Pool
	Required      bool
	MaxSelections int
	// Free forces the charged price of every selection in this category to 0.
	Free    bool
	Flavors []catalog.Flavor
}

// Key returns the selection-state key for this category. Pools of the same
// underlying category track their selections independently.
func (c Category) Key() string {
	switch c.Pool {
	case PoolFree:
		return c.CategoryID + "/free"
	case PoolPaid:
		return c.CategoryID + "/paid"
	default:
		return c.CategoryID
	}
}

// flavorByID returns the flavor with the given id from this category, or nil.
func (c Category) flavorByID(id string) *catalog.Flavor {
	for i := range c.Flavors {
		if c.Flavors[i].ID == id {
			return &c.Flavors[i]
		}
	}
	return nil
}

// ForProduct returns the ordered list of selection categories applicable to
// the product: catalog flavor categories filtered by the product's line,
// expanded through the classifier. Order is catalog order (sort_order, then
// declaration order); a split category yields its free pool first.
func ForProduct(m *catalog.Menu, p catalog.Product, cls *catalog.Classifier) []Category {
	line := m.LineOf(p)

	applicable := make([]catalog.FlavorCategory, 0, len(m.FlavorCategories))
	for _, fc := range m.FlavorCategories {
		if fc.AppliesTo == line || fc.AppliesTo == catalog.LineAll {
			applicable = append(applicable, fc)
		}
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].SortOrder < applicable[j].SortOrder
	})

	var out []Category
	for _, fc := range applicable {
		flavors := availableFlavors(m.Flavors, fc.ID)

		if cls.Classify(fc) == catalog.ClassFreePaidSplit {
			out = append(out,
				Category{
					CategoryID:    fc.ID,
					Name:          fc.Name + " Grátis",
					Pool:          PoolFree,
					Required:      false,
					MaxSelections: 1,
					Free:          true,
					Flavors:       flavors,
				},
				Category{
					CategoryID:    fc.ID,
					Name:          fc.Name,
					Pool:          PoolPaid,
					Required:      false,
					MaxSelections: 1,
					Free:          false,
					Flavors:       flavors,
				},
			)
			continue
		}

		out = append(out, Category{
			CategoryID:    fc.ID,
			Name:          fc.Name,
			Pool:          PoolAll,
			Required:      fc.IsRequired,
			MaxSelections: fc.MaxSelections,
			Free:          allFree(flavors),
			Flavors:       flavors,
		})
	}
	return out
}

func availableFlavors(flavors []catalog.Flavor, categoryID string) []catalog.Flavor {
	var out []catalog.Flavor
	for _, f := range flavors {
		if f.CategoryID == categoryID && f.Available {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

func allFree(flavors []catalog.Flavor) bool {
	for _, f := range flavors {
		if f.ExtraPrice.IsPositive() {
			return false
		}
	}
	return true
}

// Resolved is one confirmed flavor selection with the price actually charged:
// 0 for free pools regardless of the flavor's nominal extra price.
type Resolved struct {
	CategoryID   string
	CategoryName string
	FlavorID     string
	FlavorName   string
	Charged      decimal.Decimal
}

// Resolve flattens a selection state into the ordered list of resolved
// selections, walking categories in their presentation order.
func Resolve(categories []Category, state State) []Resolved {
	var out []Resolved
	for _, cat := range categories {
		for _, flavorID := range state[cat.Key()] {
			f := cat.flavorByID(flavorID)
			if f == nil {
				continue
			}
			charged := f.ExtraPrice
			if cat.Free {
				charged = decimal.Zero
			}
			out = append(out, Resolved{
				CategoryID:   cat.CategoryID,
				CategoryName: cat.Name,
				FlavorID:     f.ID,
				FlavorName:   f.Name,
				Charged:      charged,
			})
		}
	}
	return out
}
