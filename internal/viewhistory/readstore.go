package viewhistory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
	"github.com/google/uuid"
)

// ReadStoreHistory keeps entries in the view_history read model collection.
type ReadStoreHistory struct {
	mu        sync.Mutex
	readStore store.ReadStoreInterface
}

func NewReadStoreHistory(rs store.ReadStoreInterface) *ReadStoreHistory {
	return &ReadStoreHistory{readStore: rs}
}

func (h *ReadStoreHistory) entries(ctx context.Context) ([]*Entry, error) {
	items, err := h.readStore.GetAll(ctx, readmodel.CollectionViewHistory)
	if err != nil {
		return nil, fmt.Errorf("list view history: %w", err)
	}
	entries := make([]*Entry, 0, len(items))
	for _, item := range items {
		if e, ok := item.(*Entry); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (h *ReadStoreHistory) Record(ctx context.Context, v View) (Entry, error) {
	if _, err := ViewerKey(v.UserID, v.SessionID); err != nil {
		return Entry{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.entries(ctx)
	if err != nil {
		return Entry{}, err
	}

	var latest *Entry
	for _, e := range entries {
		if e.DishID != v.DishID || !sameViewer(*e, v.UserID, v.SessionID) {
			continue
		}
		if latest == nil || e.ViewedAt.After(latest.ViewedAt) {
			latest = e
		}
	}

	if latest != nil && shouldCoalesce(*latest, v.ViewedAt) {
		updated := *latest
		refresh(&updated, v.ViewedAt)
		if err := h.readStore.Set(ctx, readmodel.CollectionViewHistory, updated.ID, &updated); err != nil {
			return Entry{}, err
		}
		return updated, nil
	}

	entry := Entry{
		ID:        uuid.New().String(),
		UserID:    v.UserID,
		DishID:    v.DishID,
		ViewedAt:  v.ViewedAt,
		ExpiresAt: v.ViewedAt.Add(Retention),
	}
	if v.UserID == "" {
		entry.SessionID = v.SessionID
	}
	if err := h.readStore.Set(ctx, readmodel.CollectionViewHistory, entry.ID, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (h *ReadStoreHistory) History(ctx context.Context, userID, sessionID string, limit int, now time.Time) ([]Entry, error) {
	if _, err := ViewerKey(userID, sessionID); err != nil {
		return nil, err
	}

	entries, err := h.entries(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Entry, 0)
	for _, e := range entries {
		if sameViewer(*e, userID, sessionID) && e.ExpiresAt.After(now) {
			result = append(result, *e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ViewedAt.After(result[j].ViewedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (h *ReadStoreHistory) Prune(ctx context.Context, now time.Time) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.entries(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.ExpiresAt.After(now) {
			continue
		}
		if err := h.readStore.Delete(ctx, readmodel.CollectionViewHistory, e.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
