// Package httpapi exposes the sync, leaderboard and signal services as a
// CORS-open HTTP/JSON API.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/siegesync/internal/logging"
)

// RouterOptions controls which optional routes are mounted.
type RouterOptions struct {
	// EnableDevRoutes mounts /test/populate and /admin/clear.
	EnableDevRoutes bool
	// AdminSecret, when non-empty, guards the dev routes with an admin JWT.
	AdminSecret string
}

// NewRouter builds the full handler chain: CORS, request id and access log
// around the route table.
func NewRouter(h *Handlers, opts RouterOptions, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/sync", h.Sync).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", h.Leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/signal", h.SendSignal).Methods(http.MethodPost)
	r.HandleFunc("/signal/read", h.MarkRead).Methods(http.MethodPost)
	r.HandleFunc("/signals/{username}", h.ListSignals).Methods(http.MethodGet)
	r.HandleFunc("/signals/", h.MissingUsername).Methods(http.MethodGet)
	r.HandleFunc("/signals", h.MissingUsername).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	if opts.EnableDevRoutes {
		gate := adminMiddleware(opts.AdminSecret, logger)
		r.Handle("/test/populate", gate(http.HandlerFunc(h.Populate))).Methods(http.MethodPost)
		r.Handle("/admin/clear", gate(http.HandlerFunc(h.Clear))).Methods(http.MethodPost)
	}

	return corsMiddleware(requestIDMiddleware(loggerMiddleware(logger.With("module", "access"))(r)))
}
