package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
	"github.com/dmitrijs2005/siegesync/internal/server/services"
)

// Handlers binds the services to HTTP.
type Handlers struct {
	board   *services.Board
	signals *services.Signals
	admin   *services.Admin
	pinger  kv.Pinger
	logger  logging.Logger
}

// NewHandlers constructs Handlers. pinger may be nil when the backend cannot
// report liveness.
func NewHandlers(board *services.Board, signals *services.Signals, admin *services.Admin, pinger kv.Pinger, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{
		board:   board,
		signals: signals,
		admin:   admin,
		pinger:  pinger,
		logger:  logger.With("module", "http"),
	}
}

type sendSignalRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

type markReadRequest struct {
	SignalIDs json.RawMessage `json:"signalIds"`
}

type populateRequest struct {
	Username string `json:"username"`
}

type populateResponse struct {
	Success bool `json:"success"`
	services.PopulateResult
}

type clearResponse struct {
	Success bool `json:"success"`
	Cleared int  `json:"cleared"`
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Sync handles POST /sync.
func (h *Handlers) Sync(w http.ResponseWriter, r *http.Request) {
	var req services.SyncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.board.Sync(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Leaderboard handles GET /leaderboard.
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.board.Leaderboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// SendSignal handles POST /signal.
func (h *Handlers) SendSignal(w http.ResponseWriter, r *http.Request) {
	var req sendSignalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	if _, err := h.signals.Send(r.Context(), req.From, req.To, req.Type); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ListSignals handles GET /signals/{username}.
func (h *Handlers) ListSignals(w http.ResponseWriter, r *http.Request) {
	records, err := h.signals.List(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// MissingUsername answers /signals requests without a username.
func (h *Handlers) MissingUsername(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, "username is required")
}

// MarkRead handles POST /signal/read. Non-string ids are ignored.
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	var items []any
	if len(req.SignalIDs) == 0 || req.SignalIDs[0] != '[' || json.Unmarshal(req.SignalIDs, &items) != nil {
		writeError(w, http.StatusBadRequest, "signalIds must be an array")
		return
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id, ok := it.(string); ok {
			ids = append(ids, id)
		}
	}

	h.signals.MarkRead(r.Context(), ids)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Populate handles POST /test/populate.
func (h *Handlers) Populate(w http.ResponseWriter, r *http.Request) {
	var req populateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := h.admin.Populate(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, populateResponse{Success: true, PopulateResult: *res})
}

// Clear handles POST /admin/clear.
func (h *Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.admin.Clear(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Warn(r.Context(), "admin clear executed", "cleared", n, "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, clearResponse{Success: true, Cleared: n})
}

// Health reports store liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
