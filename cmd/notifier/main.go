package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/otka-dev/otka-backend/internal/notifications"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/mailer"
	"github.com/otka-dev/otka-backend/pkg/pubsub"
	"github.com/otka-dev/otka-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "notifier"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "notifier",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	var sender mailer.Sender
	if cfg.SMTP.Configured() {
		smtp, smtpErr := mailer.NewSMTPSender(cfg.SMTP, logg)
		if smtpErr != nil {
			logg.Error(context.Background(), "failed to create smtp sender", smtpErr)
			os.Exit(1)
		}
		sender = smtp
	} else {
		logg.Warn(context.Background(), "smtp not configured, notification emails will be logged only")
	}

	consumer, err := notifications.NewConsumer(pubsubClient.OrderEventsSubscription(), sender, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting notifier")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notifier stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "notifier shutting down gracefully")
}
