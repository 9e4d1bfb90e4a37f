package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/otka-dev/otka-backend/internal/cron"
	"github.com/otka-dev/otka-backend/internal/partnerorders"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/metrics"
	"github.com/otka-dev/otka-backend/pkg/migrate"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/redis"
)

const lockKeyFormat = "otka:cron-worker:lock:%s"

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	staleDraftJob, err := cron.NewStaleDraftJob(cron.StaleDraftJobParams{
		Logger: logg,
		DB:     dbClient,
		Orders: partnerorders.NewRepository(dbClient.DB()),
		Outbox: outboxService,
		TTL:    cfg.Orders.DraftTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stale draft job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outbox.NewRepository(dbClient.DB()),
		Retention:  cfg.Outbox.Retention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleDraftJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
