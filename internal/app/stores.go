// Package app wires configured back ends for the binaries under cmd.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/tastesphere/internal/config"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/viewhistory"
	"github.com/redis/go-redis/v9"
)

// relayBatch caps the events republished per outbox relay pass.
const relayBatch = 500

// EventStore is the configured event store together with its outbox relay.
type EventStore struct {
	store.EventStoreInterface
	relay func(ctx context.Context) (int, error)
}

// RelayPending republishes events whose first publication failed. Back
// ends that publish through a change stream have nothing to relay.
func (s *EventStore) RelayPending(ctx context.Context) (int, error) {
	if s.relay == nil {
		return 0, nil
	}
	return s.relay(ctx)
}

// OpenDatabase connects to PostgreSQL unless the whole stack runs in
// memory, in which case it returns nil.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.EventStore == config.EventStoreMemory {
		return nil, nil
	}
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// OpenEventStore builds the event store selected by cfg.EventStore.
// publisher may be nil for processes that only read events.
func OpenEventStore(ctx context.Context, cfg *config.Config, db *sql.DB, publisher store.Publisher) (*EventStore, error) {
	switch cfg.EventStore {
	case config.EventStorePostgres:
		if db == nil {
			return nil, errors.New("postgres event store needs a database")
		}
		pg := store.NewPostgresEventStore(db, publisher)
		return &EventStore{
			EventStoreInterface: pg,
			relay: func(ctx context.Context) (int, error) {
				return pg.RelayPending(ctx, relayBatch)
			},
		}, nil

	case config.EventStoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return &EventStore{
			EventStoreInterface: store.NewDynamoEventStore(client, cfg.Dynamo.EventsTable, cfg.Dynamo.SnapshotsTable),
		}, nil

	case config.EventStoreMemory:
		mem := store.NewEventStore(publisher)
		return &EventStore{EventStoreInterface: mem, relay: mem.RelayPending}, nil
	}
	return nil, fmt.Errorf("unknown event store %q", cfg.EventStore)
}

// OpenReadStore returns the PostgreSQL read store, or an in-memory one
// when db is nil.
func OpenReadStore(db *sql.DB) store.ReadStoreInterface {
	if db == nil {
		return store.NewReadStore()
	}
	return store.NewPostgresReadStore(db)
}

// OpenViewHistory uses Redis when REDIS_ADDR is set and the read store
// otherwise. The returned close function is never nil.
func OpenViewHistory(ctx context.Context, cfg *config.Config, rs store.ReadStoreInterface, logger *slog.Logger) (viewhistory.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return viewhistory.NewReadStoreHistory(rs), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("view history backed by redis", "addr", cfg.RedisAddr)

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}
	return viewhistory.NewRedisHistory(client, ""), closeFn, nil
}
