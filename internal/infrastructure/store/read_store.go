package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// ReadStore is an in-memory read model store. Models are kept encoded, the
// same way the PostgreSQL read store keeps them, so every Get, GetAll and
// Update works on its own copy. GetAll returns items in the order they were
// first stored.
type ReadStore struct {
	mu    sync.RWMutex
	data  map[string]map[string]storedModel // collection -> id -> model
	order map[string][]string               // collection -> ids in insertion order
}

type storedModel struct {
	typ reflect.Type
	raw []byte
}

func NewReadStore() *ReadStore {
	return &ReadStore{
		data:  make(map[string]map[string]storedModel),
		order: make(map[string][]string),
	}
}

func encodeModel(data any) (storedModel, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return storedModel{}, fmt.Errorf("encode read model: %w", err)
	}
	return storedModel{typ: reflect.TypeOf(data), raw: raw}, nil
}

// decode returns a fresh value of the stored dynamic type.
func (m storedModel) decode() (any, error) {
	if m.typ == nil {
		return nil, nil
	}
	if m.typ.Kind() == reflect.Pointer {
		dst := reflect.New(m.typ.Elem())
		if err := json.Unmarshal(m.raw, dst.Interface()); err != nil {
			return nil, fmt.Errorf("decode read model: %w", err)
		}
		return dst.Interface(), nil
	}
	dst := reflect.New(m.typ)
	if err := json.Unmarshal(m.raw, dst.Interface()); err != nil {
		return nil, fmt.Errorf("decode read model: %w", err)
	}
	return dst.Elem().Interface(), nil
}

// Set stores a read model
func (rs *ReadStore) Set(ctx context.Context, collection, id string, data any) error {
	model, err := encodeModel(data)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.putLocked(collection, id, model)
	return nil
}

func (rs *ReadStore) putLocked(collection, id string, model storedModel) {
	if rs.data[collection] == nil {
		rs.data[collection] = make(map[string]storedModel)
	}
	if _, exists := rs.data[collection][id]; !exists {
		rs.order[collection] = append(rs.order[collection], id)
	}
	rs.data[collection][id] = model
}

// Get retrieves a read model by id
func (rs *ReadStore) Get(ctx context.Context, collection, id string) (any, bool, error) {
	rs.mu.RLock()
	model, ok := rs.data[collection][id]
	rs.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	data, err := model.decode()
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// GetAll retrieves all items in a collection
func (rs *ReadStore) GetAll(ctx context.Context, collection string) ([]any, error) {
	rs.mu.RLock()
	ids := rs.order[collection]
	models := make([]storedModel, 0, len(ids))
	for _, id := range ids {
		models = append(models, rs.data[collection][id])
	}
	rs.mu.RUnlock()

	items := make([]any, 0, len(models))
	for _, model := range models {
		data, err := model.decode()
		if err != nil {
			return nil, err
		}
		items = append(items, data)
	}
	return items, nil
}

// Delete removes a read model
func (rs *ReadStore) Delete(ctx context.Context, collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.data[collection][id]; !ok {
		return nil
	}
	delete(rs.data[collection], id)

	ids := rs.order[collection]
	for i, existing := range ids {
		if existing == id {
			rs.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Update modifies a read model using an update function. updateFn gets a
// private copy; its result replaces the stored model.
func (rs *ReadStore) Update(ctx context.Context, collection, id string, updateFn func(current any) any) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	stored, ok := rs.data[collection][id]
	if !ok {
		return false, nil
	}
	current, err := stored.decode()
	if err != nil {
		return false, err
	}
	model, err := encodeModel(updateFn(current))
	if err != nil {
		return false, err
	}
	rs.putLocked(collection, id, model)
	return true, nil
}
