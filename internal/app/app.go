// Package app wires the storefront together: configuration, database,
// domain services, HTTP server, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/najugourmet/storefront/internal/api"
	"github.com/najugourmet/storefront/internal/domain/cart"
	"github.com/najugourmet/storefront/internal/domain/catalog"
	"github.com/najugourmet/storefront/internal/domain/order"
	"github.com/najugourmet/storefront/internal/handoff"
	"github.com/najugourmet/storefront/internal/repository"
	"github.com/najugourmet/storefront/internal/tracker"
	"github.com/najugourmet/storefront/pkg/health"
	"github.com/najugourmet/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the status
// listener, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	deliveryFee, err := cfg.ParsedDeliveryFee()
	if err != nil {
		return err
	}

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	catalogRepo := repository.NewCatalogRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Session carts.
	sessions := cart.NewStore(cfg.Cart.TTL)
	sessions.StartCleanup(ctx, cfg.Cart.CleanupInterval)

	// Status tracking: hub, known-id filter, and the LISTEN bridge.
	hub := tracker.NewHub(lg.Named("hub"))
	defer func() { _ = hub.Close() }()

	trk := tracker.New(orderRepo, hub)
	if err := trk.Prime(ctx); err != nil {
		return errors.Wrap(err, "prime tracker")
	}
	listener := tracker.NewListener(pool, orderRepo, hub)

	// The store's WhatsApp number lives in store settings; config can override.
	whatsAppNumber := cfg.WhatsAppNumber
	if whatsAppNumber == "" {
		settings, err := catalogRepo.Settings(ctx)
		if err != nil {
			return errors.Wrap(err, "load store settings")
		}
		whatsAppNumber = settings.WhatsApp
	}

	// Domain services.
	orderService := order.NewService(orderRepo, sessions, trk, deliveryFee)

	// HTTP handlers.
	h := api.NewHandler(
		catalogRepo,
		catalog.NewClassifier(cfg.Selection.SplitKeywords),
		sessions,
		orderService,
		trk,
		handoff.NewBuilder(whatsAppNumber, cfg.StoreTitle),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      0, // status streams stay open indefinitely
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", api.SessionHeader},
				ExposeHeaders:    []string{api.SessionHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api"),
			httpmiddleware.LogRequests(),
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listener.Run(gctx)
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	return g.Wait()
}
