package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/tastesphere/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface on a single JSONB table
// keyed by (collection, id). Values are decoded into the read model type
// registered for the collection.
type PostgresReadStore struct {
	db *sql.DB
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Set stores a read model
func (rs *PostgresReadStore) Set(ctx context.Context, collection, id string, data any) error {
	return upsertReadModel(ctx, rs.db, collection, id, data)
}

func upsertReadModel(ctx context.Context, db execer, collection, id string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO read_models (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now()
	`, collection, id, payload)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(ctx context.Context, collection, id string) (any, bool, error) {
	return getReadModel(ctx, rs.db, collection, id, "")
}

func getReadModel(ctx context.Context, db queryRower, collection, id, lockClause string) (any, bool, error) {
	var payload []byte
	err := db.QueryRowContext(ctx,
		"SELECT data FROM read_models WHERE collection = $1 AND id = $2"+lockClause,
		collection, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	model, err := decodeReadModel(collection, payload)
	if err != nil {
		return nil, false, err
	}
	return model, true, nil
}

// GetAll retrieves all items in a collection in insertion order
func (rs *PostgresReadStore) GetAll(ctx context.Context, collection string) ([]any, error) {
	rows, err := rs.db.QueryContext(ctx,
		"SELECT data FROM read_models WHERE collection = $1 ORDER BY created_at ASC, id ASC",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	items := make([]any, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		model, err := decodeReadModel(collection, payload)
		if err != nil {
			return nil, err
		}
		items = append(items, model)
	}
	return items, rows.Err()
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(ctx context.Context, collection, id string) error {
	_, err := rs.db.ExecContext(ctx, "DELETE FROM read_models WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update modifies a read model using an update function. The row is locked
// for the duration of the read-modify-write.
func (rs *PostgresReadStore) Update(ctx context.Context, collection, id string, updateFn func(current any) any) (bool, error) {
	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	current, found, err := getReadModel(ctx, tx, collection, id, " FOR UPDATE")
	if err != nil || !found {
		return false, err
	}

	if err := upsertReadModel(ctx, tx, collection, id, updateFn(current)); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func decodeReadModel(collection string, payload []byte) (any, error) {
	model, ok := readmodel.NewForCollection(collection)
	if !ok {
		var generic map[string]any
		if err := json.Unmarshal(payload, &generic); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		return generic, nil
	}
	if err := json.Unmarshal(payload, model); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return model, nil
}
