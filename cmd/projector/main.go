package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/tastesphere/internal/app"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/config"
	"github.com/example/tastesphere/internal/infrastructure/kafka"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/projection"
	"golang.org/x/sync/errgroup"
)

func main() {
	replay := flag.Bool("replay", false, "rebuild read models from the event store before consuming")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel).With("service", "projector")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "config", cfg.String(), "group", cfg.Kafka.ConsumerGroup)
	if err := run(ctx, cfg, *replay, logger); err != nil {
		logger.Error("projector stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}

func run(ctx context.Context, cfg *config.Config, replay bool, logger *slog.Logger) error {
	if cfg.EventStore == config.EventStoreMemory {
		return errors.New("EVENT_STORE=memory projects inside the api process")
	}
	clk := clock.System

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	readStore := app.OpenReadStore(db)

	history, closeHistory, err := app.OpenViewHistory(ctx, cfg, readStore, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	projector := projection.NewProjector(readStore, projection.WithViewHistory(history), projection.WithClock(clk))

	if replay {
		eventStore, err := app.OpenEventStore(ctx, cfg, db, nil)
		if err != nil {
			return err
		}
		failed, err := app.Replay(ctx, eventStore, projector.HandleEvent, logger)
		if err != nil {
			return err
		}
		logger.Info("replay completed", "failed", failed)
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup)
	defer consumer.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		app.PruneLoop(ctx, history, clk, cfg.ViewHistoryPruneInterval, logger)
		return nil
	})
	return g.Wait()
}
