package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
	"github.com/hims91/audio-nature-nexus-backend/pkg/migrate"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})
	boot := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(boot, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	fatalIf(logg, boot, "failed to load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(boot, cfg.DB, logg)
	fatalIf(logg, boot, "failed to bootstrap database", err)
	defer dbClient.Close()

	fatalIf(logg, boot, "failed to run dev migrations", migrate.MaybeRunDev(boot, cfg, logg, dbClient))

	pubsubClient, err := pubsub.NewClient(boot, cfg.GCP, cfg.PubSub, logg)
	fatalIf(logg, boot, "failed to bootstrap pubsub", err)
	defer pubsubClient.Close()

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
	})
	fatalIf(logg, boot, "failed to create outbox publisher", err)

	ctx, stop := signal.NotifyContext(boot, os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
	})
	logg.Info(ctx, "starting outbox publisher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

func fatalIf(logg *logger.Logger, ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
