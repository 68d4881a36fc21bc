package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hims91/audio-nature-nexus-backend/api/routes"
	"github.com/hims91/audio-nature-nexus-backend/internal/cart"
	"github.com/hims91/audio-nature-nexus-backend/internal/catalog"
	checkoutsvc "github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	"github.com/hims91/audio-nature-nexus-backend/internal/discounts"
	"github.com/hims91/audio-nature-nexus-backend/internal/notifications"
	"github.com/hims91/audio-nature-nexus-backend/internal/orders"
	"github.com/hims91/audio-nature-nexus-backend/internal/pricing"
	stripewebhook "github.com/hims91/audio-nature-nexus-backend/internal/webhooks/stripe"
	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
	"github.com/hims91/audio-nature-nexus-backend/pkg/metrics"
	"github.com/hims91/audio-nature-nexus-backend/pkg/migrate"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pubsub"
	"github.com/hims91/audio-nature-nexus-backend/pkg/redis"
	"github.com/hims91/audio-nature-nexus-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gormDB := dbClient.DB()
	cartRepo := cart.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	sessionsRepo := checkoutsvc.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	discountsSvc, err := discounts.NewService(discounts.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create discounts service", err)
		os.Exit(1)
	}

	cartSvc, err := cart.NewService(cartRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceDeps{
		Carts:      cartRepo,
		Catalog:    catalogRepo,
		Sessions:   sessionsRepo,
		Orders:     ordersRepo,
		Discounts:  discountsSvc,
		Calculator: pricing.NewCalculator(cfg.Shipping, cfg.Tax),
		Stripe:     checkoutsvc.NewStripeClient(stripeClient),
		Tx:         dbClient,
		Outbox:     outboxSvc,
		Stock:      checkoutsvc.NewStockCommitter(),
		Metrics:    checkoutMetrics,
		Checkout:   cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, outboxSvc, orders.NewRestocker())
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.EventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Reconciler: checkoutService,
		Metrics:    checkoutMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			PubSub:        pubsubClient,
			Catalog:       catalogRepo,
			Carts:         cartSvc,
			Checkout:      checkoutService,
			Orders:        ordersSvc,
			Notifications: notificationsSvc,
			StripeClient:  stripeClient,
			WebhookSvc:    webhookSvc,
			WebhookGuard:  webhookGuard,
			Metrics:       registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
