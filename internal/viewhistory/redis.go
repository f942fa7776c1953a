package viewhistory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "viewhistory"
	pruneBatch       = 100
)

// RedisHistory stores entries as JSON strings that expire with the
// retention period. Each viewer has a sorted set of entry ids scored by
// view time, and a short-lived pointer per dish drives coalescing.
//
//	<prefix>:entry:<id>             entry JSON, expires at ExpiresAt
//	<prefix>:viewer:<viewer>        ZSET entry id -> viewedAt (unix ms)
//	<prefix>:latest:<viewer>:<dish> latest entry id, TTL CoalesceWindow
//	<prefix>:viewers                SET of viewer keys, walked by Prune
type RedisHistory struct {
	client redis.UniversalClient
	prefix string
	clock  clock.Clock
}

// RedisOption configures a RedisHistory.
type RedisOption func(*RedisHistory)

// WithRedisClock sets the clock key TTLs are measured against.
func WithRedisClock(c clock.Clock) RedisOption {
	return func(h *RedisHistory) { h.clock = c }
}

func NewRedisHistory(client redis.UniversalClient, prefix string, opts ...RedisOption) *RedisHistory {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	h := &RedisHistory{client: client, prefix: prefix, clock: clock.System}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *RedisHistory) entryKey(id string) string { return h.prefix + ":entry:" + id }

func (h *RedisHistory) viewerKey(viewer string) string { return h.prefix + ":viewer:" + viewer }

func (h *RedisHistory) latestKey(viewer, dishID string) string {
	return h.prefix + ":latest:" + viewer + ":" + dishID
}

func (h *RedisHistory) viewersKey() string { return h.prefix + ":viewers" }

func score(t time.Time) float64 { return float64(t.UnixMilli()) }

// entryTTL is how long an entry has left at now. Zero or less means it has
// already expired.
func entryTTL(expiresAt, now time.Time) time.Duration {
	return expiresAt.Sub(now)
}

func (h *RedisHistory) getEntry(ctx context.Context, id string) (*Entry, error) {
	raw, err := h.client.Get(ctx, h.entryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode view entry %s: %w", id, err)
	}
	return &e, nil
}

func (h *RedisHistory) Record(ctx context.Context, v View) (Entry, error) {
	viewer, err := ViewerKey(v.UserID, v.SessionID)
	if err != nil {
		return Entry{}, err
	}

	var entry *Entry
	latestID, err := h.client.Get(ctx, h.latestKey(viewer, v.DishID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return Entry{}, fmt.Errorf("read latest view: %w", err)
	default:
		if entry, err = h.getEntry(ctx, latestID); err != nil {
			return Entry{}, err
		}
	}

	if entry != nil && shouldCoalesce(*entry, v.ViewedAt) {
		refresh(entry, v.ViewedAt)
	} else {
		entry = &Entry{
			ID:        uuid.New().String(),
			UserID:    v.UserID,
			DishID:    v.DishID,
			ViewedAt:  v.ViewedAt,
			ExpiresAt: v.ViewedAt.Add(Retention),
		}
		if v.UserID == "" {
			entry.SessionID = v.SessionID
		}
	}

	ttl := entryTTL(entry.ExpiresAt, h.clock.Now())
	if ttl <= 0 {
		return *entry, nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, err
	}

	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, h.entryKey(entry.ID), payload, ttl)
		pipe.ZAdd(ctx, h.viewerKey(viewer), redis.Z{Score: score(entry.ViewedAt), Member: entry.ID})
		pipe.Expire(ctx, h.viewerKey(viewer), ttl)
		pipe.Set(ctx, h.latestKey(viewer, v.DishID), entry.ID, min(ttl, CoalesceWindow))
		pipe.SAdd(ctx, h.viewersKey(), viewer)
		return nil
	})
	if err != nil {
		return Entry{}, fmt.Errorf("record view: %w", err)
	}
	return *entry, nil
}

func (h *RedisHistory) History(ctx context.Context, userID, sessionID string, limit int, now time.Time) ([]Entry, error) {
	viewer, err := ViewerKey(userID, sessionID)
	if err != nil {
		return nil, err
	}

	by := &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now.Add(-Retention).UnixMilli(), 10),
		Max: "+inf",
	}
	if limit > 0 {
		by.Count = int64(limit)
	}
	ids, err := h.client.ZRevRangeByScore(ctx, h.viewerKey(viewer), by).Result()
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := h.getEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		if e != nil && e.ExpiresAt.After(now) {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

// Prune drops expired ids from the viewer sets. The entries themselves
// expire through their TTL.
func (h *RedisHistory) Prune(ctx context.Context, now time.Time) (int, error) {
	cutoff := strconv.FormatInt(now.Add(-Retention).UnixMilli(), 10)

	removed := 0
	var cursor uint64
	for {
		viewers, next, err := h.client.SScan(ctx, h.viewersKey(), cursor, "", pruneBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("scan viewers: %w", err)
		}
		for _, viewer := range viewers {
			n, err := h.client.ZRemRangeByScore(ctx, h.viewerKey(viewer), "-inf", cutoff).Result()
			if err != nil {
				return removed, fmt.Errorf("prune %s: %w", viewer, err)
			}
			removed += int(n)

			remaining, err := h.client.ZCard(ctx, h.viewerKey(viewer)).Result()
			if err != nil {
				return removed, err
			}
			if remaining == 0 {
				if err := h.client.SRem(ctx, h.viewersKey(), viewer).Err(); err != nil {
					return removed, fmt.Errorf("forget viewer %s: %w", viewer, err)
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
