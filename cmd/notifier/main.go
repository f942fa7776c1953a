package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/tastesphere/internal/app"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/config"
	"github.com/example/tastesphere/internal/email"
	"github.com/example/tastesphere/internal/infrastructure/kafka"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel).With("service", "notifier")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		"config", cfg.String(),
		"group", cfg.Kafka.NotifierGroup,
		"smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port,
	)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.EventStore == config.EventStoreMemory {
		return errors.New("EVENT_STORE=memory notifies inside the api process")
	}

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	readStore := app.OpenReadStore(db)

	emailSvc := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	handler := notification.NewHandler(readStore, clock.System,
		notification.NewEmailDispatcher(emailSvc),
		notification.NewLogDispatcher(logger),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.NotifierGroup)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
