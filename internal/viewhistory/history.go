// Package viewhistory keeps a per-viewer log of dish views. Repeat views of
// the same dish within CoalesceWindow refresh the latest entry instead of
// adding a new one, and entries expire Retention after their last view.
package viewhistory

import (
	"context"
	"errors"
	"time"

	"github.com/example/tastesphere/internal/readmodel"
)

const (
	CoalesceWindow = time.Hour
	Retention      = 90 * 24 * time.Hour
)

var ErrAnonymousViewer = errors.New("a view needs a user id or a session id")

// Entry is one coalesced view.
type Entry = readmodel.ViewHistoryReadModel

// View is a single dish view. A logged-in viewer is identified by UserID,
// an anonymous one by SessionID.
type View struct {
	UserID    string
	SessionID string
	DishID    string
	ViewedAt  time.Time
}

// ViewerKey identifies the viewer, preferring the user id.
func ViewerKey(userID, sessionID string) (string, error) {
	switch {
	case userID != "":
		return "user:" + userID, nil
	case sessionID != "":
		return "session:" + sessionID, nil
	}
	return "", ErrAnonymousViewer
}

// Store records and lists views.
type Store interface {
	// Record stores the view, coalescing it with a recent entry for the
	// same viewer and dish.
	Record(ctx context.Context, v View) (Entry, error)
	// History lists a viewer's unexpired entries, most recent first.
	// limit <= 0 returns everything.
	History(ctx context.Context, userID, sessionID string, limit int, now time.Time) ([]Entry, error)
	// Prune removes entries that expired at or before now.
	Prune(ctx context.Context, now time.Time) (int, error)
}

func shouldCoalesce(latest Entry, viewedAt time.Time) bool {
	return viewedAt.Sub(latest.ViewedAt) < CoalesceWindow
}

func refresh(e *Entry, viewedAt time.Time) {
	if viewedAt.After(e.ViewedAt) {
		e.ViewedAt = viewedAt
	}
	e.ExpiresAt = e.ViewedAt.Add(Retention)
}

func sameViewer(e Entry, userID, sessionID string) bool {
	if userID != "" {
		return e.UserID == userID
	}
	return e.UserID == "" && e.SessionID == sessionID
}
