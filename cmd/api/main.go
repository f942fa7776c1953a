package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/tastesphere/internal/api"
	"github.com/example/tastesphere/internal/app"
	"github.com/example/tastesphere/internal/auth"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/config"
	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/domain/user"
	"github.com/example/tastesphere/internal/infrastructure/kafka"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/notification"
	"github.com/example/tastesphere/internal/projection"
	"github.com/example/tastesphere/internal/query"
	"golang.org/x/sync/errgroup"
)

const (
	tokenExpiry     = 15 * time.Minute
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel).With("service", "api")
	slog.SetDefault(logger)

	if err := cfg.RequireJWTSecret(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "config", cfg.String())
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	clk := clock.System

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	readStore := app.OpenReadStore(db)

	history, closeHistory, err := app.OpenViewHistory(ctx, cfg, readStore, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	// In memory mode the projector and notifier run in this process.
	inProcess := cfg.EventStore == config.EventStoreMemory
	var publisher store.Publisher
	if inProcess {
		projector := projection.NewProjector(readStore, projection.WithViewHistory(history), projection.WithClock(clk))
		notifier := notification.NewHandler(readStore, clk, notification.NewLogDispatcher(logger))
		publisher = app.NewLocalBus(projector.HandleEvent, notifier.HandleEvent)
		logger.Info("running projection in process")
	} else {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	}

	eventStore, err := app.OpenEventStore(ctx, cfg, db, publisher)
	if err != nil {
		return err
	}

	cmdHandler := command.NewHandler(
		dish.NewService(eventStore, clk),
		cart.NewService(eventStore, clk),
		order.NewService(eventStore, order.WithClock(clk)),
		review.NewService(eventStore, clk),
		user.NewService(eventStore, clk),
	)
	queryHandler := query.NewHandler(readStore,
		query.WithViewHistory(history),
		query.WithClock(clk),
		query.WithTrendingWindow(cfg.TrendingWindow),
	)

	router := api.NewRouter(api.NewHandlers(cmdHandler, queryHandler, clk), api.RouterConfig{
		Tokens:          auth.NewTokenService(cfg.JWTSecret, tokenExpiry, clk),
		TrustUserHeader: cfg.TrustUserHeader,
		Logger:          logger,
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		app.RelayLoop(ctx, eventStore, cfg.OutboxRelayInterval, logger)
		return nil
	})
	if inProcess {
		g.Go(func() error {
			app.PruneLoop(ctx, history, clk, cfg.ViewHistoryPruneInterval, logger)
			return nil
		})
	}
	return g.Wait()
}
