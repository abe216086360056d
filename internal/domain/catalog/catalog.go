// Package catalog defines the read-only menu catalog: products, their
// categories, flavor/topping option groups, banners, and store settings.
package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

// Product lines. A flavor category applies to one line or to all of them.
const (
	LineCup    = "cup"
	LineBottle = "bottle"
	LineAll    = "all"
)

// Banner is a promotional image shown on the storefront.
type Banner struct {
	ID        string
	Title     string
	ImageURL  string
	Link      string
	Active    bool
	SortOrder int
}

// ProductCategory groups products into menu sections (e.g. "Copos", "Garrafas").
type ProductCategory struct {
	ID    string
	Name  string
	Slug  string
	Emoji string
	Color string
}

// Product is a purchasable catalog item with a base price. Flavor selections
// are priced on top of it by the selection engine.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	ImageURL    string
	Available   bool
}

// FlavorCategory is a named group of customization choices with its own
// required/cap rules. AppliesTo restricts it to a product line (LineCup,
// LineBottle) or LineAll.
type FlavorCategory struct {
	ID            string
	Name          string
	Slug          string
	MaxSelections int
	IsRequired    bool
	AppliesTo     string
	SortOrder     int
}

// Flavor is a single selectable option within a flavor category.
type Flavor struct {
	ID         string
	Name       string
	CategoryID string
	ExtraPrice decimal.Decimal
	Available  bool
	SortOrder  int
}

// StoreSettings holds store-wide toggles. IsOpen = false short-circuits the
// whole ordering flow before any cart logic is reachable.
type StoreSettings struct {
	ID            string
	IsOpen        bool
	OpenMessage   string
	ClosedMessage string
	WhatsApp      string
}

// Menu bundles the full catalog as served to the storefront.
type Menu struct {
	Banners          []Banner
	Categories       []ProductCategory
	Products         []Product
	FlavorCategories []FlavorCategory
	Flavors          []Flavor
	Settings         StoreSettings
}

// CategoryByID returns the product category with the given id, or nil.
func (m *Menu) CategoryByID(id string) *ProductCategory {
	for i := range m.Categories {
		if m.Categories[i].ID == id {
			return &m.Categories[i]
		}
	}
	return nil
}

// LineOf derives the product line from the product's category slug. Categories
// whose slug mentions a bottle line sell bottled products; everything else is
// the cup line.
func (m *Menu) LineOf(p Product) string {
	cat := m.CategoryByID(p.CategoryID)
	if cat == nil {
		return LineCup
	}
	slug := strings.ToLower(cat.Slug)
	if strings.Contains(slug, "garrafa") || strings.Contains(slug, "bottle") {
		return LineBottle
	}
	return LineCup
}

// Repository defines read operations for the menu catalog.
type Repository interface {
	Menu(ctx context.Context) (*Menu, error)
	ProductByID(ctx context.Context, id string) (*Product, error)
	Settings(ctx context.Context) (*StoreSettings, error)
}
