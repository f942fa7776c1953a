package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/tastesphere/internal/api/middleware"
	"github.com/example/tastesphere/internal/auth"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	clock        clock.Clock
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, c clock.Clock) *Handlers {
	if c == nil {
		c = clock.System
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		clock:        c,
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// caller returns the identity resolved by middleware.Identify.
func caller(r *http.Request) (auth.Identity, error) {
	return auth.FromContext(r.Context())
}

// viewer identifies the caller for view history, falling back to the
// anonymous session header.
func viewer(r *http.Request) (userID, sessionID string) {
	if id, err := caller(r); err == nil {
		return id.UserID, ""
	}
	return "", r.Header.Get(middleware.SessionIDHeader)
}

func isAdmin(id auth.Identity) bool { return id.Role == auth.RoleAdmin }
