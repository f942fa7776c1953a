package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/tastesphere/internal/app"
	"github.com/example/tastesphere/internal/config"
	"github.com/example/tastesphere/internal/infrastructure/kinesis"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/projection"
)

var (
	projector *projection.Projector
	logger    *slog.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.LogLevel).With("service", "lambda_projector")
	slog.SetDefault(logger)

	ctx := context.Background()
	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	readStore := app.OpenReadStore(db)

	history, _, err := app.OpenViewHistory(ctx, cfg, readStore, logger)
	if err != nil {
		logger.Error("failed to open view history", "error", err)
		os.Exit(1)
	}

	projector = projection.NewProjector(readStore, projection.WithViewHistory(history))
	logger.Info("initialized")
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	resp := kinesis.Process(ctx, kinesisEvent, projector.HandleEvent)
	logger.Info("batch processed",
		"records", len(kinesisEvent.Records),
		"failed", len(resp.BatchItemFailures),
	)
	return resp, nil
}

func main() {
	lambda.Start(handler)
}
