package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (NAJU_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (NAJU_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	StoreTitle     string `default:"Naju Gourmet" usage:"Store name shown in hand-off messages" flag:"store-title"`
	WhatsAppNumber string `usage:"Override the store WhatsApp number from the database" flag:"whatsapp-number"`
	DeliveryFee    string `default:"2.00" usage:"Fixed delivery fee" flag:"delivery-fee"`

	Cart      CartConfig
	Selection SelectionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// CartConfig controls the in-memory session cart store.
type CartConfig struct {
	TTL             time.Duration `default:"6h"  usage:"Idle session eviction TTL" flag:"cart-ttl"`
	CleanupInterval time.Duration `default:"10m" usage:"Session eviction sweep interval" flag:"cart-cleanup-interval"`
}

// SelectionConfig controls the flavor selection engine.
type SelectionConfig struct {
	// SplitKeywords marks flavor categories that split into free and paid
	// pools. Empty uses the built-in defaults.
	SplitKeywords []string `usage:"Category keywords that trigger the free/paid split" flag:"split-keywords"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// ParsedDeliveryFee returns the configured delivery fee as a decimal.
func (c *Config) ParsedDeliveryFee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.DeliveryFee)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse delivery fee %q", c.DeliveryFee)
	}
	if fee.IsNegative() {
		return decimal.Zero, errors.New("delivery fee must not be negative")
	}
	return fee, nil
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "NAJU",
		Files:     []string{"config.yaml", "/etc/naju/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set NAJU_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's NAJU_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
