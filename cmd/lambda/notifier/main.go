package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/tastesphere/internal/app"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/config"
	"github.com/example/tastesphere/internal/email"
	"github.com/example/tastesphere/internal/infrastructure/kinesis"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/notification"
)

var (
	notificationHandler *notification.Handler
	logger              *slog.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.LogLevel).With("service", "lambda_notifier")
	slog.SetDefault(logger)

	db, err := app.OpenDatabase(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	emailSvc := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	notificationHandler = notification.NewHandler(app.OpenReadStore(db), clock.System,
		notification.NewEmailDispatcher(emailSvc),
		notification.NewLogDispatcher(logger),
	)
	logger.Info("initialized", "smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port)
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	resp := kinesis.Process(ctx, kinesisEvent, notificationHandler.HandleEvent)
	logger.Info("batch processed",
		"records", len(kinesisEvent.Records),
		"failed", len(resp.BatchItemFailures),
	)
	return resp, nil
}

func main() {
	lambda.Start(handler)
}
