package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStore_GetAll_InsertionOrder(t *testing.T) {
	rs := NewReadStore()
	ctx := context.Background()

	require.NoError(t, rs.Set(ctx, "dishes", "c", "third"))
	require.NoError(t, rs.Set(ctx, "dishes", "a", "first"))
	require.NoError(t, rs.Set(ctx, "dishes", "b", "second"))
	// overwriting keeps the original position
	require.NoError(t, rs.Set(ctx, "dishes", "c", "third-updated"))

	items, err := rs.GetAll(ctx, "dishes")
	require.NoError(t, err)
	assert.Equal(t, []any{"third-updated", "first", "second"}, items)
}

func TestReadStore_GetAll_EmptyCollection(t *testing.T) {
	rs := NewReadStore()

	items, err := rs.GetAll(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReadStore_Delete(t *testing.T) {
	rs := NewReadStore()
	ctx := context.Background()
	_ = rs.Set(ctx, "orders", "1", "x")
	_ = rs.Set(ctx, "orders", "2", "y")

	require.NoError(t, rs.Delete(ctx, "orders", "1"))

	_, ok, err := rs.Get(ctx, "orders", "1")
	require.NoError(t, err)
	assert.False(t, ok)
	items, _ := rs.GetAll(ctx, "orders")
	assert.Equal(t, []any{"y"}, items)
}

func TestReadStore_Update(t *testing.T) {
	rs := NewReadStore()
	ctx := context.Background()
	_ = rs.Set(ctx, "counters", "views", 1)

	ok, err := rs.Update(ctx, "counters", "views", func(current any) any {
		return current.(int) + 1
	})
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, _ := rs.Get(ctx, "counters", "views")
	assert.Equal(t, 2, v)

	ok, err = rs.Update(ctx, "counters", "missing", func(current any) any { return current })
	require.NoError(t, err)
	assert.False(t, ok)
}

type testModel struct {
	Name  string   `json:"name"`
	Views int      `json:"views"`
	Tags  []string `json:"tags"`
}

func TestReadStore_ReturnsCopies(t *testing.T) {
	rs := NewReadStore()
	ctx := context.Background()
	original := &testModel{Name: "Masala Dosa", Tags: []string{"veg"}}
	require.NoError(t, rs.Set(ctx, "dishes", "d1", original))

	// mutating the value passed to Set does not reach the store
	original.Views = 99

	got, ok, err := rs.Get(ctx, "dishes", "d1")
	require.NoError(t, err)
	require.True(t, ok)
	model := got.(*testModel)
	assert.Equal(t, 0, model.Views)

	// neither does mutating a value handed out by Get or GetAll
	model.Tags[0] = "changed"
	all, err := rs.GetAll(ctx, "dishes")
	require.NoError(t, err)
	all[0].(*testModel).Name = "changed"

	again, _, _ := rs.Get(ctx, "dishes", "d1")
	assert.Equal(t, &testModel{Name: "Masala Dosa", Tags: []string{"veg"}}, again)
}

func TestReadStore_UpdateWorksOnCopy(t *testing.T) {
	rs := NewReadStore()
	ctx := context.Background()
	require.NoError(t, rs.Set(ctx, "dishes", "d1", &testModel{Name: "Idli"}))
	held, _, _ := rs.Get(ctx, "dishes", "d1")

	ok, err := rs.Update(ctx, "dishes", "d1", func(current any) any {
		m := current.(*testModel)
		m.Views++
		return m
	})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 0, held.(*testModel).Views)
	updated, _, _ := rs.Get(ctx, "dishes", "d1")
	assert.Equal(t, 1, updated.(*testModel).Views)
}

func TestReadStore_ConcurrentUpdateAndRead(t *testing.T) {
	rs := NewReadStore()
	ctx := context.Background()
	require.NoError(t, rs.Set(ctx, "dishes", "d1", &testModel{Name: "Poha"}))

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = rs.Update(ctx, "dishes", "d1", func(current any) any {
				m := current.(*testModel)
				m.Views++
				m.Tags = append(m.Tags, "seen")
				return m
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			items, err := rs.GetAll(ctx, "dishes")
			if assert.NoError(t, err) && assert.Len(t, items, 1) {
				m := items[0].(*testModel)
				_ = m.Views + len(m.Tags)
			}
		}
	}()
	wg.Wait()

	final, _, _ := rs.Get(ctx, "dishes", "d1")
	assert.Equal(t, rounds, final.(*testModel).Views)
}
