package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/najugourmet/storefront/internal/domain/catalog"
)

const (
	listBannersSQL = `SELECT id, title, image_url, link_url, active, sort_order
		FROM banners WHERE active ORDER BY sort_order, id`

	listProductCategoriesSQL = `SELECT id, name, slug, emoji, color
		FROM product_categories ORDER BY slug`

	listProductsSQL = `SELECT id, name, description, price, category_id, image_url, available
		FROM products ORDER BY name`

	getProductByIDSQL = `SELECT id, name, description, price, category_id, image_url, available
		FROM products WHERE id = $1`

	listFlavorCategoriesSQL = `SELECT id, name, slug, max_selections, is_required, applies_to, sort_order
		FROM flavor_categories ORDER BY sort_order, id`

	listFlavorsSQL = `SELECT id, name, category_id, extra_price, available, sort_order
		FROM flavors ORDER BY sort_order, id`

	getSettingsSQL = `SELECT id, is_open, open_message, closed_message, whatsapp
		FROM store_settings LIMIT 1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Menu loads the full catalog bundle.
func (r *CatalogRepository) Menu(ctx context.Context) (*catalog.Menu, error) {
	var (
		m   catalog.Menu
		err error
	)

	if m.Banners, err = collect(ctx, r.pool, listBannersSQL, scanBanner); err != nil {
		return nil, fmt.Errorf("listing banners: %w", err)
	}
	if m.Categories, err = collect(ctx, r.pool, listProductCategoriesSQL, scanProductCategory); err != nil {
		return nil, fmt.Errorf("listing product categories: %w", err)
	}
	if m.Products, err = collect(ctx, r.pool, listProductsSQL, scanProduct); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	if m.FlavorCategories, err = collect(ctx, r.pool, listFlavorCategoriesSQL, scanFlavorCategory); err != nil {
		return nil, fmt.Errorf("listing flavor categories: %w", err)
	}
	if m.Flavors, err = collect(ctx, r.pool, listFlavorsSQL, scanFlavor); err != nil {
		return nil, fmt.Errorf("listing flavors: %w", err)
	}

	settings, err := r.Settings(ctx)
	if err != nil {
		return nil, err
	}
	m.Settings = *settings

	return &m, nil
}

// ProductByID returns a single product by its identifier.
func (r *CatalogRepository) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Settings returns the store-wide settings row. A missing row defaults to an
// open store, so a fresh database does not block ordering.
func (r *CatalogRepository) Settings(ctx context.Context) (*catalog.StoreSettings, error) {
	rows, err := r.pool.Query(ctx, getSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("getting store settings: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSettings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &catalog.StoreSettings{IsOpen: true}, nil
		}
		return nil, fmt.Errorf("getting store settings: %w", err)
	}
	return &s, nil
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

func scanBanner(row pgx.CollectableRow) (catalog.Banner, error) {
	var b catalog.Banner
	err := row.Scan(&b.ID, &b.Title, &b.ImageURL, &b.Link, &b.Active, &b.SortOrder)
	return b, err
}

func scanProductCategory(row pgx.CollectableRow) (catalog.ProductCategory, error) {
	var c catalog.ProductCategory
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Emoji, &c.Color)
	return c, err
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p     catalog.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.CategoryID, &p.ImageURL, &p.Available)
	p.Price = price
	return p, err
}

func scanFlavorCategory(row pgx.CollectableRow) (catalog.FlavorCategory, error) {
	var c catalog.FlavorCategory
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.MaxSelections, &c.IsRequired, &c.AppliesTo, &c.SortOrder)
	return c, err
}

func scanFlavor(row pgx.CollectableRow) (catalog.Flavor, error) {
	var (
		f     catalog.Flavor
		extra decimal.Decimal
	)
	err := row.Scan(&f.ID, &f.Name, &f.CategoryID, &extra, &f.Available, &f.SortOrder)
	f.ExtraPrice = extra
	return f, err
}

func scanSettings(row pgx.CollectableRow) (catalog.StoreSettings, error) {
	var s catalog.StoreSettings
	err := row.Scan(&s.ID, &s.IsOpen, &s.OpenMessage, &s.ClosedMessage, &s.WhatsApp)
	return s, err
}
