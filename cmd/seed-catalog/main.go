// Command seed-catalog loads the menu catalog from a JSON file (optionally
// gzip-compressed) into the database: banners, product categories, products,
// flavor categories, flavors, and store settings.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/najugourmet/storefront/internal/repository"
)

type bannerJSON struct {
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Link      string `json:"link"`
	Active    *bool  `json:"active"`
	SortOrder int    `json:"sort_order"`
}

type categoryJSON struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

type productJSON struct {
	CategorySlug string          `json:"category_slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url"`
	Available    *bool           `json:"available"`
}

type flavorCategoryJSON struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	MaxSelections int    `json:"max_selections"`
	IsRequired    bool   `json:"is_required"`
	AppliesTo     string `json:"applies_to"`
	SortOrder     int    `json:"sort_order"`
}

type flavorJSON struct {
	CategorySlug string          `json:"category_slug"`
	Name         string          `json:"name"`
	ExtraPrice   decimal.Decimal `json:"extra_price"`
	Available    *bool           `json:"available"`
	SortOrder    int             `json:"sort_order"`
}

type settingsJSON struct {
	IsOpen        *bool  `json:"is_open"`
	OpenMessage   string `json:"open_message"`
	ClosedMessage string `json:"closed_message"`
	WhatsApp      string `json:"whatsapp"`
}

type catalogJSON struct {
	Banners          []bannerJSON         `json:"banners"`
	Categories       []categoryJSON       `json:"categories"`
	Products         []productJSON        `json:"products"`
	FlavorCategories []flavorCategoryJSON `json:"flavor_categories"`
	Flavors          []flavorJSON         `json:"flavors"`
	Settings         *settingsJSON        `json:"settings"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file (.gz supported)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	catalog, err := readCatalog(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Independent table groups seed concurrently; rows that reference a
	// category seed after their parent within the same group.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return seedBanners(gctx, pool, catalog.Banners) })
	g.Go(func() error { return seedSettings(gctx, pool, catalog.Settings) })
	g.Go(func() error {
		if err := seedCategories(gctx, pool, catalog.Categories); err != nil {
			return err
		}
		return seedProducts(gctx, pool, catalog.Products)
	})
	g.Go(func() error {
		if err := seedFlavorCategories(gctx, pool, catalog.FlavorCategories); err != nil {
			return err
		}
		return seedFlavors(gctx, pool, catalog.Flavors)
	})
	return g.Wait()
}

// readCatalog parses the catalog file, transparently decompressing .gz input.
func readCatalog(path string) (*catalogJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var catalog catalogJSON
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, errors.Wrap(err, "parse catalog JSON")
	}
	return &catalog, nil
}

func orTrue(b *bool) bool {
	return b == nil || *b
}

func seedBanners(ctx context.Context, pool *pgxpool.Pool, banners []bannerJSON) error {
	slog.Info("upserting banners", slog.Int("count", len(banners)))

	for _, b := range banners {
		_, err := pool.Exec(ctx, `INSERT INTO banners (title, image_url, link_url, active, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (title) DO UPDATE SET
				image_url = EXCLUDED.image_url, link_url = EXCLUDED.link_url,
				active = EXCLUDED.active, sort_order = EXCLUDED.sort_order`,
			b.Title, b.ImageURL, b.Link, orTrue(b.Active), b.SortOrder,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert banner %s", b.Title)
		}
	}
	return nil
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool, s *settingsJSON) error {
	if s == nil {
		return nil
	}
	slog.Info("upserting store settings")

	// Single-row table: replace whatever is there.
	_, err := pool.Exec(ctx, `DELETE FROM store_settings`)
	if err != nil {
		return errors.Wrap(err, "clear store settings")
	}
	_, err = pool.Exec(ctx, `INSERT INTO store_settings (is_open, open_message, closed_message, whatsapp)
		VALUES ($1, $2, $3, $4)`,
		orTrue(s.IsOpen), s.OpenMessage, s.ClosedMessage, s.WhatsApp,
	)
	if err != nil {
		return errors.Wrap(err, "insert store settings")
	}
	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, categories []categoryJSON) error {
	slog.Info("upserting product categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		_, err := pool.Exec(ctx, `INSERT INTO product_categories (name, slug, emoji, color)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name, emoji = EXCLUDED.emoji, color = EXCLUDED.color`,
			c.Name, c.Slug, c.Emoji, c.Color,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.Slug)
		}
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, `INSERT INTO products (category_id, name, description, price, image_url, available)
			SELECT id, $2, $3, $4, $5, $6 FROM product_categories WHERE slug = $1
			ON CONFLICT (category_id, name) DO UPDATE SET
				description = EXCLUDED.description, price = EXCLUDED.price,
				image_url = EXCLUDED.image_url, available = EXCLUDED.available`,
			p.CategorySlug, p.Name, p.Description, p.Price, p.ImageURL, orTrue(p.Available),
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}

		slog.Info("upserted product", slog.String("name", p.Name), slog.String("category", p.CategorySlug))
	}
	return nil
}

func seedFlavorCategories(ctx context.Context, pool *pgxpool.Pool, categories []flavorCategoryJSON) error {
	slog.Info("upserting flavor categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		appliesTo := c.AppliesTo
		if appliesTo == "" {
			appliesTo = "all"
		}
		maxSelections := c.MaxSelections
		if maxSelections <= 0 {
			maxSelections = 1
		}
		_, err := pool.Exec(ctx, `INSERT INTO flavor_categories (name, slug, max_selections, is_required, applies_to, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name, max_selections = EXCLUDED.max_selections,
				is_required = EXCLUDED.is_required, applies_to = EXCLUDED.applies_to,
				sort_order = EXCLUDED.sort_order`,
			c.Name, c.Slug, maxSelections, c.IsRequired, appliesTo, c.SortOrder,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert flavor category %s", c.Slug)
		}
	}
	return nil
}

func seedFlavors(ctx context.Context, pool *pgxpool.Pool, flavors []flavorJSON) error {
	slog.Info("upserting flavors", slog.Int("count", len(flavors)))

	for _, f := range flavors {
		_, err := pool.Exec(ctx, `INSERT INTO flavors (category_id, name, extra_price, available, sort_order)
			SELECT id, $2, $3, $4, $5 FROM flavor_categories WHERE slug = $1
			ON CONFLICT (category_id, name) DO UPDATE SET
				extra_price = EXCLUDED.extra_price, available = EXCLUDED.available,
				sort_order = EXCLUDED.sort_order`,
			f.CategorySlug, f.Name, f.ExtraPrice, orTrue(f.Available), f.SortOrder,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert flavor %s", f.Name)
		}
	}
	return nil
}
